package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"miyabi-hq/statusproxy/pkg/proxy"
	"miyabi-hq/statusproxy/pkg/proxy/types"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// with a JSON error body. The panic is logged with its stack trace; nothing
// internal reaches the client.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newResponseWriter(w)

		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			slog.ErrorContext(r.Context(), "panic in handler",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			if rw.written {
				return
			}
			_ = proxy.WriteErrorResponse(rw, r, types.NewServerError())
		}()

		next.ServeHTTP(rw, r)
	})
}
