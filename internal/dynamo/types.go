package dynamo

import (
	"fmt"
	"math"
)

// Physical constants used by the presets.
const (
	G   = 6.67428e-11    // gravitational constant, m³ kg⁻¹ s⁻²
	AU  = 149.6e6 * 1000 // astronomical unit, m
	Day = 3600.0 * 24    // seconds
)

// Ordering selects how a step applies accumulated forces.
type Ordering int

const (
	// TwoPhase computes every body's force against pre-step positions before
	// mutating any body.
	TwoPhase Ordering = iota
	// Sequential fully updates each body before the next body's force is
	// computed, so later bodies see already-moved earlier bodies.
	Sequential
)

func (o Ordering) String() string {
	switch o {
	case TwoPhase:
		return "two-phase"
	case Sequential:
		return "sequential"
	}
	return fmt.Sprintf("ordering(%d)", int(o))
}

// ParseOrdering accepts "two-phase" (or "") and "sequential".
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "", "two-phase", "twophase":
		return TwoPhase, nil
	case "sequential":
		return Sequential, nil
	}
	return TwoPhase, fmt.Errorf("%w: unknown ordering %q", ErrInvalidParameter, s)
}

func (o Ordering) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Ordering) UnmarshalText(b []byte) error {
	v, err := ParseOrdering(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// DegeneratePolicy decides what a zero-distance pair does.
type DegeneratePolicy int

const (
	// Reject fails the step with ErrDegenerateConfiguration.
	Reject DegeneratePolicy = iota
	// Skip drops the pair's contribution for that step.
	Skip
	// Clamp raises distances below MinDistance to MinDistance. Coincident
	// bodies have no direction and contribute nothing.
	Clamp
)

func (p DegeneratePolicy) String() string {
	switch p {
	case Reject:
		return "reject"
	case Skip:
		return "skip"
	case Clamp:
		return "clamp"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParseDegeneratePolicy accepts "reject" (or ""), "skip" and "clamp".
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch s {
	case "", "reject":
		return Reject, nil
	case "skip":
		return Skip, nil
	case "clamp":
		return Clamp, nil
	}
	return Reject, fmt.Errorf("%w: unknown degenerate policy %q", ErrInvalidParameter, s)
}

func (p DegeneratePolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *DegeneratePolicy) UnmarshalText(b []byte) error {
	v, err := ParseDegeneratePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

type Config struct {
	Dt            float64
	G             float64
	Ordering      Ordering
	Degenerate    DegeneratePolicy
	MinDistance   float64
	Workers       int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            Day,
		G:             G,
		Ordering:      TwoPhase,
		Degenerate:    Reject,
		Workers:       1,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidParameter, c.Dt)
	}
	if !(c.G > 0) || math.IsInf(c.G, 0) {
		return fmt.Errorf("%w: gravitational constant must be positive, got %g", ErrInvalidParameter, c.G)
	}
	if c.Degenerate == Clamp && !(c.MinDistance > 0) {
		return fmt.Errorf("%w: clamp policy needs a positive min distance, got %g", ErrInvalidParameter, c.MinDistance)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidParameter, c.Workers)
	}
	return nil
}
