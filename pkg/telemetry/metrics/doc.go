// Package metrics exposes the proxy's Prometheus metrics.
//
// # Metrics
//
// All names carry the configured namespace and subsystem
// (miyabi_statusproxy_ by default):
//
//   - http_requests_total{route,method,code}
//   - http_request_duration_seconds{route}
//   - status_served_total{source}
//   - probe_attempts_total{path,outcome}
//   - probe_duration_seconds{path}
//   - refresh_total{outcome}
//   - refresh_duration_seconds
//   - last_success_timestamp_seconds
//   - cache_source{source}
//   - build_info{version,commit}
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordProbeAttempt("/status", "timeout", 5*time.Second)
//	router.Handle("/metrics", collector.Handler())
//
// Path labels come from the configured candidate list and route labels from
// the fixed route table, so label cardinality is bounded by configuration.
package metrics
