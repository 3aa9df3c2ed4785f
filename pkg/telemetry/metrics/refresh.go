package metrics

import (
	"time"

	"miyabi-hq/statusproxy/pkg/cache"
	"miyabi-hq/statusproxy/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RefreshMetrics tracks refresh cycles and the state of the cached document.
type RefreshMetrics struct {
	refreshTotal    *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	lastSuccess     prometheus.Gauge
	source          *prometheus.GaugeVec
}

// NewRefreshMetrics creates and registers refresh metrics with the provided registry.
func NewRefreshMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RefreshMetrics {
	rm := &RefreshMetrics{
		refreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "refresh_total",
				Help:      "Refresh cycles, by outcome (upstream, synthetic, failed)",
			},
			[]string{"outcome"},
		),

		refreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "refresh_duration_seconds",
				Help:      "Duration of a full refresh cycle in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful refresh",
			},
		),

		source: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_source",
				Help:      "1 for the source of the currently cached document, 0 otherwise",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		rm.refreshTotal,
		rm.refreshDuration,
		rm.lastSuccess,
		rm.source,
	)

	rm.SetSource(string(cache.SourcePlaceholder))

	return rm
}

// RecordRefresh records a completed cycle.
func (rm *RefreshMetrics) RecordRefresh(outcome string, duration time.Duration) {
	rm.refreshTotal.WithLabelValues(outcome).Inc()
	rm.refreshDuration.Observe(duration.Seconds())
}

// SetLastSuccess records the time of the latest successful cycle.
func (rm *RefreshMetrics) SetLastSuccess(t time.Time) {
	rm.lastSuccess.Set(float64(t.UnixNano()) / 1e9)
}

// SetSource flips the cache_source gauge to source.
func (rm *RefreshMetrics) SetSource(source string) {
	for _, s := range cache.Sources() {
		v := 0.0
		if string(s) == source {
			v = 1
		}
		rm.source.WithLabelValues(string(s)).Set(v)
	}
}
