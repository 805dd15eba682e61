package analysis

import (
	"math"

	"github.com/san-kum/orrery/internal/sim"
)

// Divergence returns, per body, the largest position separation between two
// recordings of the same system. Samples are matched by step and body name;
// unmatched samples are ignored.
func Divergence(a, b []sim.Sample) map[string]float64 {
	type key struct {
		step int
		body string
	}

	index := make(map[key]sim.Sample, len(b))
	for _, s := range b {
		index[key{s.Step, s.Body}] = s
	}

	out := make(map[string]float64)
	for _, s := range a {
		other, ok := index[key{s.Step, s.Body}]
		if !ok {
			continue
		}
		sep := math.Hypot(s.X-other.X, s.Y-other.Y)
		out[s.Body] = math.Max(out[s.Body], sep)
	}
	return out
}
