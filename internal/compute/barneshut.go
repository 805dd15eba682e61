package compute

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/physics"
)

// BarnesHut approximates forces with a quadtree. Theta is the opening
// angle; 0 visits every leaf.
type BarnesHut struct {
	Theta float64
}

func NewBarnesHut(theta float64) *BarnesHut { return &BarnesHut{Theta: theta} }

func (b *BarnesHut) Name() string { return "barnes-hut" }

func (b *BarnesHut) Forces(bodies []*physics.Body, g float64) ([]r2.Vec, error) {
	return physics.ApproximateForces(bodies, b.Theta, g)
}
