package sim

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
)

type Simulator struct {
	bodies   []*physics.Body
	pairs    []Pair
	partners [][]int
	cfg      dynamo.Config
	gravity  physics.Gravity

	forces []r2.Vec
	errs   []error

	step int
	t    float64

	metrics   []Metric
	observers []Observer
}

// New takes ownership of bodies for the lifetime of the run. The set must be
// non-empty, without nil or repeated bodies.
func New(bodies []*physics.Body, cfg dynamo.Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(bodies) == 0 {
		return nil, dynamo.ErrNoBodies
	}

	seen := make(map[*physics.Body]bool, len(bodies))
	for i, b := range bodies {
		if b == nil {
			return nil, fmt.Errorf("%w: body %d is nil", dynamo.ErrInvalidParameter, i)
		}
		if seen[b] {
			return nil, fmt.Errorf("%w: body %q appears more than once", dynamo.ErrInvalidParameter, b.Name())
		}
		seen[b] = true
		if !(b.Mass() > 0) {
			return nil, fmt.Errorf("%w: body %q mass must be positive, got %g", dynamo.ErrInvalidParameter, b.Name(), b.Mass())
		}
	}

	n := len(bodies)
	pairs := Pairs(n)
	return &Simulator{
		bodies:   append([]*physics.Body(nil), bodies...),
		pairs:    pairs,
		partners: partners(n, pairs),
		cfg:      cfg,
		gravity:  physics.NewGravity(cfg),
		forces:   make([]r2.Vec, n),
		errs:     make([]error, n),
	}, nil
}

// AddMetric resets m and primes it with the current state.
func (s *Simulator) AddMetric(m Metric) {
	m.Reset()
	m.Observe(s.bodies, s.t)
	s.metrics = append(s.metrics, m)
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Bodies returns the simulated bodies in construction order. The slice must
// not be modified.
func (s *Simulator) Bodies() []*physics.Body { return s.bodies }

func (s *Simulator) Pairs() []Pair         { return s.pairs }
func (s *Simulator) Config() dynamo.Config { return s.cfg }
func (s *Simulator) Steps() int            { return s.step }
func (s *Simulator) Time() float64         { return s.t }

// Body looks a body up by name.
func (s *Simulator) Body(name string) (*physics.Body, bool) {
	for _, b := range s.bodies {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// Anchor returns the first anchor body, or nil.
func (s *Simulator) Anchor() *physics.Body {
	for _, b := range s.bodies {
		if b.IsAnchor() {
			return b
		}
	}
	return nil
}

// Energy is the current total energy of the set.
func (s *Simulator) Energy() float64 { return physics.TotalEnergy(s.bodies, s.cfg.G) }

// Advance moves every body forward by one time step.
//
// Under TwoPhase ordering all net forces are computed from the pre-step
// positions before any body moves, and a failed step leaves positions,
// velocities and trails untouched. Anchor distances are the exception: they
// are recorded as each pair is visited, so a rejected step may still have
// refreshed them. Under Sequential ordering each body is
// moved before the next body's force is computed.
func (s *Simulator) Advance() error {
	var err error
	if s.cfg.Ordering == dynamo.Sequential {
		err = s.advanceSequential()
	} else {
		err = s.advanceTwoPhase()
	}
	if err != nil {
		return err
	}

	if s.cfg.ValidateState {
		for _, b := range s.bodies {
			if !b.Valid() {
				return s.fail(b, dynamo.ErrInvalidState)
			}
		}
	}

	s.step++
	s.t += s.cfg.Dt

	for _, m := range s.metrics {
		m.Observe(s.bodies, s.t)
	}
	for _, o := range s.observers {
		o.OnStep(s.bodies, s.step, s.t)
	}
	return nil
}

func (s *Simulator) advanceTwoPhase() error {
	n := len(s.bodies)
	compute := func(start, end int) {
		for i := start; i < end; i++ {
			s.forces[i], s.errs[i] = s.netForce(i)
		}
	}

	if s.cfg.Workers != 1 && n >= dynamo.ParallelThreshold {
		dynamo.ParallelFor(n, dynamo.ParallelThreshold/4, s.cfg.Workers, compute)
	} else {
		compute(0, n)
	}

	for i, err := range s.errs {
		if err != nil {
			return s.fail(s.bodies[i], err)
		}
	}

	for i, b := range s.bodies {
		b.Step(s.forces[i], s.cfg.Dt)
	}
	return nil
}

func (s *Simulator) advanceSequential() error {
	for i, b := range s.bodies {
		f, err := s.netForce(i)
		if err != nil {
			return s.fail(b, err)
		}
		b.Step(f, s.cfg.Dt)
	}
	return nil
}

// netForce sums the attraction of every partner of body i. It writes only
// body i's anchor distance, so distinct i may run concurrently.
func (s *Simulator) netForce(i int) (r2.Vec, error) {
	var total r2.Vec
	b := s.bodies[i]
	for _, j := range s.partners[i] {
		f, err := s.gravity.Attraction(b, s.bodies[j])
		if err != nil {
			return r2.Vec{}, err
		}
		total.X += f.X
		total.Y += f.Y
	}
	return total, nil
}

func (s *Simulator) fail(b *physics.Body, err error) error {
	return &dynamo.SimulationError{Step: s.step, Time: s.t, Body: b.Name(), Wrapped: err}
}

// Run calls Advance steps times, stopping early on error or cancellation.
func (s *Simulator) Run(ctx context.Context, steps int) (*Result, error) {
	if steps < 0 {
		return nil, fmt.Errorf("%w: steps must not be negative, got %d", dynamo.ErrInvalidParameter, steps)
	}

	result := &Result{Metrics: make(map[string]float64)}
	initialEnergy := s.Energy()

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
			runErr = s.Advance()
		}
		if runErr != nil {
			break
		}
		result.StepsTaken++
	}

	result.Time = s.t
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(s.Energy()-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, runErr
}
