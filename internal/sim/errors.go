package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrNonFinite indicates a position or velocity became NaN or Inf,
	// usually because two bodies coincided.
	ErrNonFinite = errors.New("sim: non-finite state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a non-positive duration or step size.
	ErrInvalidConfig = errors.New("sim: invalid config")
)

// StepError wraps an error with the step at which it was detected.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4e s): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
