// Package physics holds the point-mass model and the gravity kernel.
//
//   - [Body]: position, velocity, mass, display attributes and trail
//   - [Gravity]: inverse-square attraction between two bodies
//   - [TotalEnergy], [Momentum], [AngularMomentum]: conserved quantities
//   - [ApproximateForces]: Barnes-Hut estimate for cross-checking
//
// Positions are meters and velocities meters per second; the kernel is
// unit-agnostic as long as G matches.
//
// # Energy Conservation
//
// The simulator integrates with semi-implicit Euler, so energy oscillates
// around its initial value instead of drifting steadily:
//
//	e0 := physics.TotalEnergy(s.Bodies(), cfg.G)
//	_ = s.Run(ctx, 1000)
//	drift := math.Abs(physics.TotalEnergy(s.Bodies(), cfg.G)-e0) / math.Abs(e0)
package physics
