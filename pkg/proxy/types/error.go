package types

import "net/http"

// ErrorResponse is the body of every error the proxy generates locally.
type ErrorResponse struct {
	// Error is a short, stable, human-readable message.
	Error string `json:"error"`

	// Path is the request path, set for 404s.
	Path string `json:"path,omitempty"`

	// Detail is the upstream failure summary, set for 502s.
	Detail string `json:"detail,omitempty"`

	// Details lists each candidate path failure as "<path>: <reason>".
	Details []string `json:"details,omitempty"`

	status int
}

// Error messages.
const (
	MessageNotFound         = "not found"
	MessageMethodNotAllowed = "method not allowed"
	MessageUpstreamFailed   = "failed to call upstream"
	MessageInternal         = "internal server error"
)

// NewNotFoundError creates a 404 body for path.
func NewNotFoundError(path string) *ErrorResponse {
	return &ErrorResponse{Error: MessageNotFound, Path: path, status: http.StatusNotFound}
}

// NewMethodNotAllowedError creates a 405 body.
func NewMethodNotAllowedError() *ErrorResponse {
	return &ErrorResponse{Error: MessageMethodNotAllowed, status: http.StatusMethodNotAllowed}
}

// NewBadGatewayError creates a 502 body describing a failed refresh.
func NewBadGatewayError(detail string, details []string) *ErrorResponse {
	return &ErrorResponse{
		Error:   MessageUpstreamFailed,
		Detail:  detail,
		Details: details,
		status:  http.StatusBadGateway,
	}
}

// NewServerError creates a 500 body. Internal details are never included.
func NewServerError() *ErrorResponse {
	return &ErrorResponse{Error: MessageInternal, status: http.StatusInternalServerError}
}

// HTTPStatusCode returns the status code the body is sent with.
func (e *ErrorResponse) HTTPStatusCode() int {
	if e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}
