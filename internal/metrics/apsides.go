package metrics

import (
	"math"

	"github.com/san-kum/orrery/internal/physics"
)

// Apsis records the closest or farthest recorded anchor distance of one body.
type Apsis struct {
	name    string
	body    string
	far     bool
	value   float64
	samples int
}

func NewPerihelion(body string) *Apsis {
	return &Apsis{name: body + ".perihelion", body: body}
}

func NewAphelion(body string) *Apsis {
	return &Apsis{name: body + ".aphelion", body: body, far: true}
}

func (a *Apsis) Name() string { return a.name }

func (a *Apsis) Observe(bodies []*physics.Body, t float64) {
	for _, b := range bodies {
		if b.Name() != a.body {
			continue
		}
		d := b.DistanceToAnchor()
		// Zero means no anchor distance has been recorded yet.
		if d == 0 {
			return
		}
		switch {
		case a.samples == 0:
			a.value = d
		case a.far:
			a.value = math.Max(a.value, d)
		default:
			a.value = math.Min(a.value, d)
		}
		a.samples++
		return
	}
}

func (a *Apsis) Value() float64 { return a.value }

func (a *Apsis) Reset() {
	a.value = 0
	a.samples = 0
}

// Eccentricity estimates orbital eccentricity from a pair of apsides.
func Eccentricity(perihelion, aphelion float64) float64 {
	if perihelion+aphelion == 0 {
		return 0
	}
	return (aphelion - perihelion) / (aphelion + perihelion)
}
