package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateID        = errors.New("duplicate order identifier")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrQuotaExceeded      = errors.New("active order quota exceeded")
	ErrBudgetTooLow       = errors.New("amount below configured minimum")
	ErrFileTooLarge       = errors.New("file exceeds maximum size")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrEmptyWrite         = errors.New("zero bytes persisted")
	ErrStorageUnavailable = errors.New("attachment storage unavailable")
	ErrSessionExists      = errors.New("intake session already in progress")
	ErrNoSession          = errors.New("no intake session")
	ErrUnexpectedInput    = errors.New("input does not match the current intake step")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries a corrective prompt for the actor; the failed
// intake step is retried, never advanced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidation builds a ValidationError for the given field.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
