package sim

import "github.com/san-kum/orrery/internal/physics"

// Sample is one body's state after a step.
type Sample struct {
	Step     int
	Time     float64
	Body     string
	X, Y     float64
	VX, VY   float64
	Distance float64
}

// Recorder is an Observer that keeps a sample of every body every Every
// steps.
type Recorder struct {
	Every   int
	samples []Sample
	names   []string
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{Every: every}
}

func (r *Recorder) OnStep(bodies []*physics.Body, step int, t float64) {
	if step%r.Every != 0 {
		return
	}
	if r.names == nil {
		for _, b := range bodies {
			r.names = append(r.names, b.Name())
		}
	}
	for _, b := range bodies {
		p, v := b.Position(), b.Velocity()
		r.samples = append(r.samples, Sample{
			Step:     step,
			Time:     t,
			Body:     b.Name(),
			X:        p.X,
			Y:        p.Y,
			VX:       v.X,
			VY:       v.Y,
			Distance: b.DistanceToAnchor(),
		})
	}
}

func (r *Recorder) Samples() []Sample { return r.samples }

// Names returns the recorded body names in simulation order.
func (r *Recorder) Names() []string { return r.names }

// Series returns the samples of one body in step order.
func (r *Recorder) Series(body string) []Sample {
	return FilterSamples(r.samples, body)
}

// FilterSamples returns the samples belonging to body.
func FilterSamples(samples []Sample, body string) []Sample {
	var out []Sample
	for _, s := range samples {
		if s.Body == body {
			out = append(out, s)
		}
	}
	return out
}

// Distances extracts the distance-to-anchor column.
func Distances(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Distance
	}
	return out
}
