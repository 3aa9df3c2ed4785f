package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"miyabi-hq/statusproxy/pkg/proxy/types"
)

// ContentTypeJSON is sent with every body the proxy writes.
const ContentTypeJSON = "application/json; charset=utf-8"

// Diagnostic headers on status responses. The body is never modified.
const (
	HeaderStatusSource    = "X-Status-Source"
	HeaderStatusUpdatedAt = "X-Status-Updated-At"
)

// WriteRawResponse writes body verbatim as JSON. HEAD requests get the same
// headers, including Content-Length, and no body.
func WriteRawResponse(w http.ResponseWriter, r *http.Request, statusCode int, body []byte) error {
	h := w.Header()
	h.Set("Content-Type", ContentTypeJSON)
	h.Set("Cache-Control", "no-store")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(statusCode)

	if r.Method == http.MethodHead {
		return nil
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write response body: %w", err)
	}
	return nil
}

// WriteJSONResponse marshals data and writes it with WriteRawResponse.
// If marshaling fails nothing is written.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return WriteRawResponse(w, r, statusCode, body)
}

// WriteErrorResponse writes errResp with its own status code.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, r, errResp.HTTPStatusCode(), errResp)
}
