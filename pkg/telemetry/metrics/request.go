package metrics

import (
	"strconv"
	"time"

	"miyabi-hq/statusproxy/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks the proxy's own HTTP surface.
//
// Metrics:
//   - <ns>_<sub>_http_requests_total{route,method,code}
//   - <ns>_<sub>_http_request_duration_seconds{route}
//   - <ns>_<sub>_status_served_total{source}
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	servedTotal     *prometheus.CounterVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"route", "method", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"route"},
		),

		servedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "status_served_total",
				Help:      "Status documents served, by document source",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.servedTotal,
	)

	return rm
}

// RecordRequest records a completed HTTP request.
func (rm *RequestMetrics) RecordRequest(route, method string, status int, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	rm.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordServed counts a served status document.
func (rm *RequestMetrics) RecordServed(source string) {
	rm.servedTotal.WithLabelValues(source).Inc()
}
