package middleware

import (
	"net/http"
	"time"
)

// HTTPRecorder receives one observation per request. *metrics.Collector
// implements it.
type HTTPRecorder interface {
	RecordHTTPRequest(route, method string, status int, duration time.Duration)
}

// MetricsMiddleware records request counts and latency. route maps a request
// to a bounded label value so unknown paths do not create new series.
func MetricsMiddleware(rec HTTPRecorder, route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rec == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			rec.RecordHTTPRequest(route(r), r.Method, rw.statusCode, time.Since(start))
		})
	}
}
