package nautilus

import (
	"errors"
	"fmt"
)

// #region error-kind
// ErrorKind tells callers how to react to a failed turn: re-prompt on
// validation, abort on configuration, report and allow resubmission on
// solver failure.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindValidation    ErrorKind = "validation"
	KindConfiguration ErrorKind = "configuration"
	KindSolver        ErrorKind = "solver"
	KindOther         ErrorKind = "other"
)

// KindOf classifies err.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		ve *ValidationError
		ce *ConfigurationError
		sf *SolverFailure
	)
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &ce):
		return KindConfiguration
	case errors.As(err, &sf):
		return KindSolver
	}
	return KindOther
}

// #endregion error-kind

// #region validation-error
// ValidationError reports malformed or missing DM input. Session state is
// unchanged when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid response: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// #endregion validation-error

// #region configuration-error
// ConfigurationError is an integration fault such as mismatched vector
// lengths. It halts the turn and is not something the DM can fix.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func misconfigured(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// #endregion configuration-error

// #region solver-failure
// SolverFailure reports a sub-solve that did not converge or could not
// evaluate the problem. The turn is not committed; resubmitting is the
// expected recovery.
type SolverFailure struct {
	Task   string
	Reason string
	Err    error
}

func (e *SolverFailure) Error() string {
	msg := fmt.Sprintf("solver failure in %s", e.Task)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SolverFailure) Unwrap() error { return e.Err }

// #endregion solver-failure

// ErrStepNotComputed is returned when reading a history slot that has not
// been filled yet.
var ErrStepNotComputed = errors.New("step not computed")
