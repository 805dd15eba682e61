// Package dynamo provides the simulation-wide primitives shared by the
// physics kernel and the simulator:
//
//   - [Config]: time step, gravitational constant and step policies
//   - [Ordering]: how a step applies forces (two-phase or sequential)
//   - [DegeneratePolicy]: what happens when two bodies coincide
//   - the error taxonomy ([ErrInvalidParameter], [ErrDegenerateConfiguration])
//   - [ParallelFor]: chunked fan-out used by the force phase
//
// # Example
//
//	cfg := dynamo.DefaultConfig()
//	cfg.Dt = 3600
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	s, err := sim.New(bodies, cfg)
//
// # Thread Safety
//
// Config values are plain data and safe to copy. Simulators built from them
// are NOT thread-safe; use [sim.Ensemble] for independent parallel runs.
package dynamo
