package domain

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound  = errors.New("record not found")
	ErrInvalidID = errors.New("invalid id")
	ErrForbidden = errors.New("access forbidden: you don't own this resource")
)

// Workout lifecycle errors
var (
	ErrWorkoutNotFound   = errors.New("workout not found")
	ErrNoActiveWorkout   = errors.New("no active workout")
	ErrWorkoutInProgress = errors.New("an active workout already exists")
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrSetNotFound       = errors.New("set not found")
)

// Identification errors. Transport covers network failures and non-2xx
// upstream responses; Parse covers any output that is not the exact
// five-field JSON object the prompt demands.
var (
	ErrIdentifyUpstream = errors.New("identification upstream failure")
	ErrIdentifyParse    = errors.New("identification response is not valid JSON")
)

// Session state machine errors
var (
	ErrInvalidTransition = errors.New("action not allowed in current session state")
	ErrStaleCapture      = errors.New("identification superseded by a newer capture")
)

// ValidationError reports user input that fails fast before any persistence
// call. It is never fatal and maps to a 400 at the HTTP boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
