package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures surfaced to API clients
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindAuth       ErrorKind = "auth"
	KindNotFound   ErrorKind = "not_found"
	KindState      ErrorKind = "state"
	KindUpstream   ErrorKind = "upstream"
	KindInternal   ErrorKind = "internal"
)

// AppError is the error type returned by services. Message is safe to show to
// clients; Err carries the underlying cause for logs only.
type AppError struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports malformed or out-of-range input (400)
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Status: http.StatusBadRequest}
}

// NewAuthError reports a missing or invalid credential (401)
func NewAuthError(message string) *AppError {
	return &AppError{Kind: KindAuth, Message: message, Status: http.StatusUnauthorized}
}

// NewNotFoundError reports a missing or foreign resource (404)
func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource), Status: http.StatusNotFound}
}

// NewStateError reports an operation the entity's status does not allow (400)
func NewStateError(message string) *AppError {
	return &AppError{Kind: KindState, Message: message, Status: http.StatusBadRequest}
}

// NewGoneError is a state error for expired resources (410)
func NewGoneError(message string) *AppError {
	return &AppError{Kind: KindState, Message: message, Status: http.StatusGone}
}

// NewUpstreamError wraps a processor, mailer or store failure behind a generic message
func NewUpstreamError(operation string, err error) *AppError {
	return &AppError{
		Kind:    KindUpstream,
		Message: SecureErrorMessage(operation, err).Error(),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewInternalError wraps an unexpected failure
func NewInternalError(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Status: http.StatusInternalServerError, Err: err}
}

// AsAppError extracts an AppError from err, classifying anything else as internal
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// SecureErrorMessage creates standardized error messages to prevent information leakage
func SecureErrorMessage(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s", operation)
}
