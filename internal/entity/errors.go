package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionCompleted = errors.New("session is already completed")
	ErrInvalidState     = errors.New("invalid session state")
	ErrNoResult         = errors.New("session result not available")

	// Catalog errors
	ErrQuestionNotFound = errors.New("question not found")
	ErrCatalogEmpty     = errors.New("question catalog is empty")
)

// ValidationError is a user-correctable answer rejection. It is reported
// inline and never changes session state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConfigurationError marks a malformed question catalog entry. Fatal at
// startup.
type ConfigurationError struct {
	QuestionID string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid catalog entry %q: %s", e.QuestionID, e.Reason)
}

// GenerationError marks a malformed or unparseable completion-API
// response. The attempt is fatal but the caller may retry.
type GenerationError struct {
	Reason string
	Cause  error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
