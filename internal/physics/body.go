package physics

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/dynamo"
)

// BodyParams describes a body at construction time.
type BodyParams struct {
	Name     string
	Position r2.Vec // m
	Velocity r2.Vec // m/s
	Mass     float64
	Radius   float64
	Color    color.RGBA
	Anchor   bool
}

// Body is a point mass with display attributes and the trail of positions
// it has occupied after each step.
type Body struct {
	name   string
	mass   float64
	radius float64
	color  color.RGBA
	anchor bool

	pos, vel         r2.Vec
	distanceToAnchor float64
	trail            []r2.Vec
}

// NewBody validates p and returns the body. Mass must be positive and finite.
func NewBody(p BodyParams) (*Body, error) {
	if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
		return nil, fmt.Errorf("%w: body %q mass must be positive, got %g", dynamo.ErrInvalidParameter, p.Name, p.Mass)
	}
	if !finite(p.Position) || !finite(p.Velocity) {
		return nil, fmt.Errorf("%w: body %q has a non-finite position or velocity", dynamo.ErrInvalidParameter, p.Name)
	}
	return &Body{
		name:   p.Name,
		mass:   p.Mass,
		radius: p.Radius,
		color:  p.Color,
		anchor: p.Anchor,
		pos:    p.Position,
		vel:    p.Velocity,
	}, nil
}

func (b *Body) Name() string      { return b.name }
func (b *Body) Mass() float64     { return b.mass }
func (b *Body) Radius() float64   { return b.radius }
func (b *Body) Color() color.RGBA { return b.color }
func (b *Body) IsAnchor() bool    { return b.anchor }
func (b *Body) Position() r2.Vec  { return b.pos }
func (b *Body) Velocity() r2.Vec  { return b.vel }

// DistanceToAnchor is the distance to an anchor recorded by the last force
// accumulation that involved one. Zero until then.
func (b *Body) DistanceToAnchor() float64 { return b.distanceToAnchor }

// Trail returns the recorded positions, oldest first. The slice shares
// storage with the body and must not be modified; appending to it does not
// affect the body.
func (b *Body) Trail() []r2.Vec { return b.trail[:len(b.trail):len(b.trail)] }

func (b *Body) SetPosition(p r2.Vec)          { b.pos = p }
func (b *Body) SetVelocity(v r2.Vec)          { b.vel = v }
func (b *Body) SetDistanceToAnchor(d float64) { b.distanceToAnchor = d }
func (b *Body) AppendTrail(p r2.Vec)          { b.trail = append(b.trail, p) }

// Step applies force for dt using semi-implicit Euler: the velocity is
// updated first and the new velocity moves the position. The new position
// is appended to the trail.
func (b *Body) Step(force r2.Vec, dt float64) {
	b.vel.X += force.X / b.mass * dt
	b.vel.Y += force.Y / b.mass * dt

	b.pos.X += b.vel.X * dt
	b.pos.Y += b.vel.Y * dt
	b.AppendTrail(b.pos)
}

// Valid reports whether position and velocity are finite.
func (b *Body) Valid() bool {
	return finite(b.pos) && finite(b.vel)
}

func (b *Body) String() string {
	return fmt.Sprintf("%s m=%.4g p=[%.4g, %.4g] v=[%.4g, %.4g]",
		b.name, b.mass, b.pos.X, b.pos.Y, b.vel.X, b.vel.Y)
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
