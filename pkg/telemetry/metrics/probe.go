package metrics

import (
	"time"

	"miyabi-hq/statusproxy/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ProbeMetrics tracks requests made to the upstream gateway.
type ProbeMetrics struct {
	attemptsTotal *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewProbeMetrics creates and registers probe metrics with the provided registry.
func NewProbeMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProbeMetrics {
	pm := &ProbeMetrics{
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "probe_attempts_total",
				Help:      "Upstream requests per candidate path, by outcome",
			},
			[]string{"path", "outcome"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "probe_duration_seconds",
				Help:      "Duration of upstream requests in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"path"},
		),
	}

	registry.MustRegister(pm.attemptsTotal, pm.duration)

	return pm
}

// RecordAttempt records one upstream request.
func (pm *ProbeMetrics) RecordAttempt(path, outcome string, duration time.Duration) {
	pm.attemptsTotal.WithLabelValues(path, outcome).Inc()
	pm.duration.WithLabelValues(path).Observe(duration.Seconds())
}
