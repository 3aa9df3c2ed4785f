package handlers

import (
	"net/http"
	"strings"

	"miyabi-hq/statusproxy/pkg/proxy"
	"miyabi-hq/statusproxy/pkg/proxy/types"
)

// NotFoundHandler answers unknown paths with a JSON 404.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = proxy.WriteErrorResponse(w, r, types.NewNotFoundError(r.URL.Path))
	})
}

// MethodNotAllowedHandler answers known paths requested with an unsupported
// method.
func MethodNotAllowedHandler(allowed ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
		}
		_ = proxy.WriteErrorResponse(w, r, types.NewMethodNotAllowedError())
	})
}
