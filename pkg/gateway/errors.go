package gateway

import (
	"fmt"
	"time"
)

// StatusError is returned when the gateway answers with a non-2xx status.
type StatusError struct {
	// Path is the candidate path that was requested
	Path string

	// StatusCode is the HTTP status code returned by the gateway
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway returned status %d", e.StatusCode)
}

// TimeoutError is returned when a request does not complete within the
// per-path timeout. It covers both connecting and reading the body.
type TimeoutError struct {
	// Path is the candidate path that was requested
	Path string

	// Timeout is the configured per-path timeout
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout after %s", e.Timeout)
}

// ConnectionError is returned when the gateway cannot be reached at all.
type ConnectionError struct {
	// Path is the candidate path that was requested
	Path string

	// Cause is the transport error
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// ReadError is returned when the response body cannot be read completely.
type ReadError struct {
	// Path is the candidate path that was requested
	Path string

	// Limit is set when the body exceeded the configured size limit
	Limit int64

	// Cause is the underlying read error (nil when the limit was exceeded)
	Cause error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("response body exceeds %d bytes", e.Limit)
	}
	return fmt.Sprintf("failed to read response: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ReadError) Unwrap() error {
	return e.Cause
}
