package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/dynamo"
)

// Gravity is the inverse-square attraction kernel shared by every pair.
type Gravity struct {
	G           float64
	Policy      dynamo.DegeneratePolicy
	MinDistance float64
}

// NewGravity returns the kernel configured by cfg.
func NewGravity(cfg dynamo.Config) Gravity {
	return Gravity{G: cfg.G, Policy: cfg.Degenerate, MinDistance: cfg.MinDistance}
}

// Attraction returns the force other exerts on body. When other is an
// anchor, the distance between them is stored on body.
//
// Coincident bodies are handled by g.Policy; under Reject the returned error
// wraps dynamo.ErrDegenerateConfiguration.
func (g Gravity) Attraction(body, other *Body) (r2.Vec, error) {
	if body == other {
		return r2.Vec{}, fmt.Errorf("%w: body %q attracting itself", dynamo.ErrInvalidParameter, body.name)
	}

	dx := other.pos.X - body.pos.X
	dy := other.pos.Y - body.pos.Y
	distance := math.Sqrt(dx*dx + dy*dy)

	if other.anchor {
		body.distanceToAnchor = distance
	}

	if distance == 0 {
		if g.Policy == dynamo.Reject {
			return r2.Vec{}, fmt.Errorf("%w: %q and %q", dynamo.ErrDegenerateConfiguration, body.name, other.name)
		}
		return r2.Vec{}, nil
	}
	if g.Policy == dynamo.Clamp && distance < g.MinDistance {
		distance = g.MinDistance
	}

	force := g.G * body.mass * other.mass / (distance * distance)
	theta := math.Atan2(dy, dx)
	return r2.Vec{X: math.Cos(theta) * force, Y: math.Sin(theta) * force}, nil
}
