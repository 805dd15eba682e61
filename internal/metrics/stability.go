package metrics

import (
	"math"

	"github.com/san-kum/orrery/internal/physics"
)

// Containment is the fraction of observations in which every non-anchor body
// stayed within radius of the origin. Ejected bodies in a cluster show up as
// a falling value.
type Containment struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewContainment(radius float64) *Containment {
	return &Containment{
		name:   "containment",
		radius: radius,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(bodies []*physics.Body, t float64) {
	c.samples++
	for _, b := range bodies {
		if b.IsAnchor() {
			continue
		}
		p := b.Position()
		if math.Hypot(p.X, p.Y) > c.radius {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
