package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input (bad image, empty address).
	// Always locally recoverable - the caller edits the input and retries.
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}

	// ProcessingError indicates the analysis backend accepted the input but
	// could not produce a result (blocked generation, model refusal). The
	// user-facing message is the sanitized one; Detail carries the raw cause
	// for debug logs only.
	ProcessingError struct {
		Message string
		Detail  string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }
func (e *ProcessingError) Error() string   { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }
func (e *ProcessingError) StatusCode() int   { return http.StatusUnprocessableEntity }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrProcessing   = errors.New("processing failed")
	ErrUnavailable  = errors.New("service unavailable")
)

// Is allows errors.Is() to match a NotFoundError against ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Is allows errors.Is() to match a ProcessingError against ErrProcessing
func (e *ProcessingError) Is(target error) bool {
	return target == ErrProcessing
}

// Is allows errors.Is() to match a ValidationError against ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Is allows errors.Is() to match an UnauthorizedError against ErrUnauthorized
func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// Is allows errors.Is() to match a ForbiddenError against ErrForbidden
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}
