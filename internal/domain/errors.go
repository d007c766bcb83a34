package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these are business logic errors that should be translated
// to a failed Result by the handler layer

var (
	// Input errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrInvalidToken    = errors.New("invalid or expired token")

	// Problem errors
	ErrProblemNotFound = errors.New("problem not found")
	ErrProblemExists   = errors.New("problem already exists")

	// Storage errors
	ErrStorageFailure = errors.New("storage failure")

	// General errors
	ErrUnauthorized = errors.New("unauthorized")
)

// DomainError wraps an error with additional context
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with the given error and message
func NewDomainError(err error, message string) *DomainError {
	return &DomainError{
		Err:     err,
		Message: message,
	}
}

// InvalidInput reports a missing or malformed field.
func InvalidInput(format string, args ...interface{}) error {
	return NewDomainError(ErrInvalidInput, fmt.Sprintf(format, args...))
}

// StorageError marks err as a persistence failure for the named operation.
// A nil err stays nil.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DomainError{
		Err:     ErrStorageFailure,
		Message: fmt.Sprintf("%s: %v", op, err),
	}
}
