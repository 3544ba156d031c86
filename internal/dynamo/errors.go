package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation setup and execution.
var (
	// ErrConfig indicates an invalid or inconsistent configuration.
	// Detected at construction time, never at mid-run.
	ErrConfig = errors.New("mracsim: invalid configuration")

	// ErrNumerical indicates divergence detected mid-run (non-finite
	// derivative or state). Terminal for the run that raised it.
	ErrNumerical = errors.New("mracsim: numerical divergence")
)

// ConfigError reports an invalid setup value. It wraps ErrConfig so callers
// can match with errors.Is.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// Configf builds a ConfigError with a formatted reason.
func Configf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NumericalError reports divergence at a specific step. The simulation
// history up to Step-1 remains valid.
type NumericalError struct {
	Step int
	Time float64
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("non-finite state at step %d (t=%.4f)", e.Step, e.Time)
}

func (e *NumericalError) Unwrap() error {
	return ErrNumerical
}
