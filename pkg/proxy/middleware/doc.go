// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// # Middleware Chain
//
// The server assembles the chain outermost first:
//
//	handler = RequestID(Recovery(Logging(Metrics(Tracing(CORS(router))))))
//
//  1. RequestIDMiddleware: assign or reuse X-Request-ID, store it in the context
//  2. RecoveryMiddleware: turn panics into a JSON 500, log the stack
//  3. LoggingMiddleware: one structured log line per request
//  4. MetricsMiddleware: request count and latency per route
//  5. tracing.Middleware (package tracing): server span, X-Trace-ID header
//  6. CORSMiddleware: CORS headers; OPTIONS on any path short-circuits with 204
//
// RequestID runs first so that every later log line, including a recovered
// panic, carries the request ID.
//
// # Request ID
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// A client-supplied ID is reused when it is printable ASCII of at most 128
// bytes. The ID is stored with logging.WithRequestID, so any logger built by
// package logging adds it to records logged with the request context.
//
// # CORS
//
// Dashboards and widgets call the proxy cross-origin, so CORS headers are
// always sent. The defaults are:
//
//	Access-Control-Allow-Origin: *
//	Access-Control-Allow-Methods: GET, OPTIONS
//	Access-Control-Allow-Headers: Content-Type, Authorization
//	Access-Control-Expose-Headers: X-Request-ID, X-Status-Source, X-Status-Updated-At
//
// # Recovery
//
// A recovered panic produces:
//
//	{"error":"internal server error"}
//
// unless the handler had already started the response. http.ErrAbortHandler
// is re-panicked so net/http can abort the connection.
//
// # Thread Safety
//
// All middleware functions are safe for concurrent use.
package middleware
