// Package gateway is the HTTP client used to reach the upstream gateway.
//
// A Client performs exactly one GET per call with its own deadline, reads
// the body up to a size limit, and reports failures as typed errors:
//
//   - *StatusError for non-2xx answers
//   - *TimeoutError when the per-path timeout expires
//   - *ConnectionError when the gateway cannot be reached
//   - *ReadError when the body cannot be read or is too large
//
// Retrying and path fallback are handled by the prober package.
package gateway
