package prober

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"miyabi-hq/statusproxy/pkg/gateway"
	"miyabi-hq/statusproxy/pkg/normalizer"
)

// FailureKind classifies why a candidate path was rejected. The values are
// used as metric labels.
type FailureKind string

const (
	FailureConnection   FailureKind = "connection"
	FailureTimeout      FailureKind = "timeout"
	FailureStatus       FailureKind = "status"
	FailureRead         FailureKind = "read"
	FailureEmpty        FailureKind = "empty"
	FailureInvalidJSON  FailureKind = "invalid_json"
	FailureUnrecognized FailureKind = "unrecognized"
	FailureCanceled     FailureKind = "canceled"
	FailureInternal     FailureKind = "internal"
)

// PathFailure records one rejected candidate path.
type PathFailure struct {
	Path   string
	Kind   FailureKind
	Reason string
	Err    error
}

// String renders the failure as "<path>: <reason>".
func (f PathFailure) String() string {
	return f.Path + ": " + f.Reason
}

// ProbeError is returned when every candidate path failed. Failures are in
// candidate order.
type ProbeError struct {
	Failures []PathFailure
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	if len(e.Failures) == 0 {
		return "no candidate paths configured"
	}
	last := e.Failures[len(e.Failures)-1]
	if len(e.Failures) == 1 {
		return fmt.Sprintf("candidate path failed: %s", last)
	}
	return fmt.Sprintf("all %d candidate paths failed (last %s)", len(e.Failures), last)
}

// Details returns one "<path>: <reason>" line per failure.
func (e *ProbeError) Details() []string {
	out := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.String()
	}
	return out
}

// Unwrap exposes every per-path error to errors.Is and errors.As.
func (e *ProbeError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

// Summary joins the details on one line for logging.
func (e *ProbeError) Summary() string {
	return strings.Join(e.Details(), "; ")
}

// classify maps a per-path error onto a FailureKind.
func classify(err error) FailureKind {
	var (
		statusErr   *gateway.StatusError
		timeoutErr  *gateway.TimeoutError
		connErr     *gateway.ConnectionError
		readErr     *gateway.ReadError
		classifyErr *normalizer.ClassifyError
	)

	switch {
	case errors.As(err, &classifyErr):
		switch classifyErr.Kind {
		case normalizer.KindEmpty:
			return FailureEmpty
		case normalizer.KindJSON:
			return FailureInvalidJSON
		default:
			return FailureUnrecognized
		}
	case errors.As(err, &statusErr):
		return FailureStatus
	case errors.As(err, &timeoutErr):
		return FailureTimeout
	case errors.As(err, &readErr):
		return FailureRead
	case errors.As(err, &connErr):
		return FailureConnection
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	default:
		return FailureInternal
	}
}
