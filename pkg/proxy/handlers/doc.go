// Package handlers implements the proxy's HTTP handlers.
//
// StatusHandler serves the cached status document on /status and /. It
// never blocks on the gateway in background mode; in on-demand mode it waits
// for a refresh bounded by the configured request timeout.
//
// NotFoundHandler and MethodNotAllowedHandler produce the JSON error bodies
// used for unknown paths and unsupported methods.
package handlers
