package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrAppointmentNotFound means a procedure screen was opened without the appointment
	// context a previous step must have stored. It is terminal for that screen.
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrInvalidTransition means the operation is not allowed in the workflow's current state.
	ErrInvalidTransition = errors.New("invalid workflow transition")
	// ErrNoDraftSnapshot means there is no saved appointment form to resume.
	ErrNoDraftSnapshot = errors.New("no saved appointment form")
)

// ValidationError is a missing or invalid field detected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func transitionError(op string, s State) error {
	return fmt.Errorf("%s while %s: %w", op, s, ErrInvalidTransition)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
