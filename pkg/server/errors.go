package server

import (
	"errors"
	"fmt"
	"syscall"
)

// ListenError is returned when the listener cannot be bound.
type ListenError struct {
	Addr string
	Err  error
}

// Error implements the error interface.
func (e *ListenError) Error() string {
	return fmt.Sprintf("failed to listen on %s: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying error.
func (e *ListenError) Unwrap() error {
	return e.Err
}

// AddrInUse reports whether the address was already taken by another
// process.
func (e *ListenError) AddrInUse() bool {
	return errors.Is(e.Err, syscall.EADDRINUSE)
}
