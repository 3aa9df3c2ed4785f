// Package tracing provides OpenTelemetry tracing for the status proxy.
//
// Each refresh cycle is a span with one child span per candidate path
// attempted against the gateway. Incoming HTTP requests get a server span
// through Middleware, and the W3C traceparent is injected into every
// gateway request.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, tracing.SpanRefresh)
//	defer span.End()
//
// # Sampling
//
// Samplers ("always", "never", "ratio") are wrapped in ParentBased so an
// upstream decision is honoured.
//
// # Export
//
// Spans are exported with OTLP over gRPC to telemetry.tracing.endpoint.
// With tracing disabled the tracer is a noop and costs nothing.
package tracing
