// Package telemetry groups the proxy's observability packages.
//
//   - logging: slog logger with credential redaction and request IDs
//   - metrics: Prometheus collector for requests, probes and refreshes
//   - tracing: OpenTelemetry spans for refresh cycles and gateway attempts
//   - health: liveness, readiness and version endpoints
//
// Each package is configured from the telemetry section of the
// configuration file and is optional: a disabled component degrades to a
// no-op rather than an error.
package telemetry
