package physics

import (
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// Coord2 satisfies barneshut.Particle2 together with Mass.
func (b *Body) Coord2() r2.Vec { return b.pos }

// ApproximateForces returns the Barnes-Hut estimate of the net force on each
// body. theta = 0 falls back to the exact quadratic sum. It does not touch
// DistanceToAnchor and is meant for cross-checking the exact kernel.
func ApproximateForces(bodies []*Body, theta, g float64) ([]r2.Vec, error) {
	particles := make([]barneshut.Particle2, len(bodies))
	for i, b := range bodies {
		particles[i] = b
	}

	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		return nil, err
	}

	forces := make([]r2.Vec, len(bodies))
	for i, b := range bodies {
		forces[i] = r2.Scale(g, plane.ForceOn(b, theta, barneshut.Gravity2))
	}
	return forces, nil
}
