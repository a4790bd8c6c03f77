package Absorber2D

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every *ConfigurationError through errors.Is
	ErrConfiguration = errors.New("Absorber2D: configuration error")
	// ErrOracle is matched by every *OracleFailure through errors.Is
	ErrOracle = errors.New("Absorber2D: Helmholtz oracle failure")
)

// ConfigurationError is raised before the optimization loop starts, or by a pure
// computation that received degenerate input
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func configErr(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// OracleFailure wraps an error returned by the Helmholtz oracle, it aborts the run
type OracleFailure struct {
	Iteration int
	Stage     string // forward, adjoint, trial or final
	Err       error
}

func (e *OracleFailure) Error() string {
	return fmt.Sprintf("%s: %s solve in iteration %d: %v", ErrOracle, e.Stage, e.Iteration, e.Err)
}

func (e *OracleFailure) Unwrap() error { return e.Err }

func (e *OracleFailure) Is(target error) bool { return target == ErrOracle }
