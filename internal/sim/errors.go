package sim

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig = errors.New("sim: invalid config")
	ErrInvalidState  = errors.New("sim: invalid state (NaN or Inf detected)")
)

// SimError carries the step at which a run went wrong.
type SimError struct {
	Step    int
	Time    float64
	Message string
	Wrapped error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e *SimError) Unwrap() error {
	return e.Wrapped
}
