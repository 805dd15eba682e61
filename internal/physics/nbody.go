package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// TotalEnergy returns kinetic plus gravitational potential energy of the
// set, summed over distinct pairs. Coincident pairs are left out of the
// potential term.
func TotalEnergy(bodies []*Body, g float64) float64 {
	ke := 0.0
	pe := 0.0

	for i, bi := range bodies {
		ke += 0.5 * bi.mass * (bi.vel.X*bi.vel.X + bi.vel.Y*bi.vel.Y)

		for _, bj := range bodies[i+1:] {
			rx := bj.pos.X - bi.pos.X
			ry := bj.pos.Y - bi.pos.Y
			r := math.Sqrt(rx*rx + ry*ry)
			if r == 0 {
				continue
			}
			pe -= g * bi.mass * bj.mass / r
		}
	}

	return ke + pe
}

// Momentum returns the total linear momentum of the set.
func Momentum(bodies []*Body) r2.Vec {
	var p r2.Vec
	for _, b := range bodies {
		p.X += b.mass * b.vel.X
		p.Y += b.mass * b.vel.Y
	}
	return p
}

// AngularMomentum returns the z component of the total angular momentum
// about the origin.
func AngularMomentum(bodies []*Body) float64 {
	L := 0.0
	for _, b := range bodies {
		L += b.mass * (b.pos.X*b.vel.Y - b.pos.Y*b.vel.X)
	}
	return L
}

// CircularVelocity is the orbital speed at radius r around a central mass m.
func CircularVelocity(g, m, r float64) float64 {
	return math.Sqrt(g * m / r)
}

// OrbitalPeriod is the Kepler period of a circular orbit of radius r around
// a central mass m.
func OrbitalPeriod(g, m, r float64) float64 {
	return 2 * math.Pi * math.Sqrt(r*r*r/(g*m))
}
