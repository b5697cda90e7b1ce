package client

import "fmt"

// NetworkError indicates the request never produced a usable response
// (connection refused, timeout, DNS failure). Retryable by the caller.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError indicates the server rejected the input. The caller fixes
// the input and retries; automatic retry is pointless.
type ValidationError struct {
	Status int
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%d): %s", e.Status, e.Detail)
}

// AuthError indicates a missing or rejected credential.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication error: %s", e.Detail)
}

// ProcessingError indicates the server accepted the input but the analysis
// backend could not produce a result.
type ProcessingError struct {
	Detail string
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing error: %s", e.Detail)
}

// UnknownError covers every response the client has no specific mapping for.
type UnknownError struct {
	Status int
	Detail string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unexpected response (%d): %s", e.Status, e.Detail)
}
