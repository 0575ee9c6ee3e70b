package dynamo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState marks a state holding NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds marks a parameter outside its valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	ErrUnknownParameter = errors.New("dynamo: unknown parameter")

	// ErrDimensionMismatch marks vectors whose lengths do not line up.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")
)

// SimulationError records the tick at which a run failed and the telemetry
// row sampled there.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4fs): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
