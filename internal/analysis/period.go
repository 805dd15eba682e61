package analysis

import (
	"errors"
	"fmt"

	"github.com/san-kum/orrery/internal/physics"
	"github.com/san-kum/orrery/internal/sim"
)

var ErrInsufficientData = errors.New("analysis: not enough samples")

// MinSamples is the shortest series OrbitalPeriod accepts.
const MinSamples = 16

// OrbitalPeriod estimates the period of body's motion from samples taken at
// a fixed interval. Coordinates are taken relative to anchor when anchor is
// non-empty, so a drifting anchor does not leak into the spectrum.
func OrbitalPeriod(samples []sim.Sample, body, anchor string) (float64, error) {
	series := sim.FilterSamples(samples, body)
	if len(series) < MinSamples {
		return 0, fmt.Errorf("%w: %d samples of %q", ErrInsufficientData, len(series), body)
	}

	var ref map[int]sim.Sample
	if anchor != "" {
		ref = make(map[int]sim.Sample)
		for _, s := range sim.FilterSamples(samples, anchor) {
			ref[s.Step] = s
		}
	}

	xs := make([]float64, 0, len(series))
	for _, s := range series {
		x := s.X
		if ref != nil {
			a, ok := ref[s.Step]
			if !ok {
				return 0, fmt.Errorf("%w: no %q sample at step %d", ErrInsufficientData, anchor, s.Step)
			}
			x -= a.X
		}
		xs = append(xs, x)
	}

	interval := (series[len(series)-1].Time - series[0].Time) / float64(len(series)-1)
	f := DominantFrequency(xs)
	if f == 0 || interval <= 0 {
		return 0, fmt.Errorf("%w: no periodic motion in %q", ErrInsufficientData, body)
	}
	return interval / f, nil
}

// KeplerPeriod is the period of a circular orbit of radius r about mass m.
func KeplerPeriod(g, m, r float64) float64 {
	return physics.OrbitalPeriod(g, m, r)
}
