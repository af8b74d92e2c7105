package vsync

import (
	"errors"
	"fmt"
)

var (
	// ErrNotVisible is used to reject animation series, when the surface is
	// not visible at the start of, or becomes hidden during, the series.
	ErrNotVisible = errors.New("vsync: surface is not visible")

	// ErrInvalidPeriod is returned by New if the fallback period is not
	// positive.
	ErrInvalidPeriod = errors.New("vsync: period must be positive")
)

// Phase identifies one half of a [Task].
type Phase int

const (
	// PhaseMeasure is the read phase.
	PhaseMeasure Phase = iota
	// PhaseMutate is the write phase.
	PhaseMutate
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseMeasure:
		return "measure"
	case PhaseMutate:
		return "mutate"
	default:
		return "unknown"
	}
}

// PanicError wraps a value recovered from a panicking phase.
type PanicError struct {
	Value any
	Phase Phase
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("vsync: %s phase panicked: %v", e.Phase, e.Value)
}

// Unwrap returns the panic value if it is an error, enabling [errors.Is] and
// [errors.As] through the panic.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
