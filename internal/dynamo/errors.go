package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a body or config value outside its valid range,
	// such as a non-positive mass.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrDegenerateConfiguration indicates two distinct bodies at the same position.
	ErrDegenerateConfiguration = errors.New("dynamo: degenerate configuration (zero distance between bodies)")

	// ErrNoBodies indicates a simulator built from an empty body set.
	ErrNoBodies = errors.New("dynamo: no bodies")

	// ErrInvalidState indicates a position or velocity became NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Body    string
	Wrapped error
}

func (e *SimulationError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("step %d (t=%.4g): %v", e.Step, e.Time, e.Wrapped)
	}
	return fmt.Sprintf("step %d (t=%.4g) body %q: %v", e.Step, e.Time, e.Body, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
