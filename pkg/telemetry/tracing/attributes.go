package tracing

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanRefresh = "statusproxy.refresh"
	SpanProbe   = "statusproxy.probe"
	SpanAttempt = "statusproxy.probe.attempt"
)

// Attribute keys. Custom keys use the "statusproxy." namespace.
const (
	AttrRefreshID    = "statusproxy.refresh_id"
	AttrTrigger      = "statusproxy.trigger"
	AttrPath         = "statusproxy.gateway.path"
	AttrOutcome      = "statusproxy.outcome"
	AttrSource       = "statusproxy.source"
	AttrSynthetic    = "statusproxy.synthetic"
	AttrCandidates   = "statusproxy.candidates"
	AttrLatency      = "statusproxy.latency_ms"
	AttrStatusCode   = "http.response.status_code"
	AttrErrorMessage = "error.message"
)

// SetAttemptAttributes annotates a single candidate path attempt.
func SetAttemptAttributes(span trace.Span, path, outcome string, latency time.Duration) {
	span.SetAttributes(
		attribute.String(AttrPath, path),
		attribute.String(AttrOutcome, outcome),
		attribute.Int64(AttrLatency, latency.Milliseconds()),
	)
}

// SetRefreshAttributes annotates a refresh cycle.
func SetRefreshAttributes(span trace.Span, refreshID, trigger string) {
	span.SetAttributes(
		attribute.String(AttrRefreshID, refreshID),
		attribute.String(AttrTrigger, trigger),
	)
}
