package metrics

import (
	"time"

	"miyabi-hq/statusproxy/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns every Prometheus metric the proxy exports. All recording
// methods are safe on a nil *Collector and are no-ops when metrics are
// disabled, so callers never need to check.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics *RequestMetrics
	probeMetrics   *ProbeMetrics
	refreshMetrics *RefreshMetrics

	buildInfo *prometheus.GaugeVec
}

// NewCollector creates a collector registered on registry. If registry is
// nil a fresh one is created with the Go runtime and process collectors
// added; the global default registry is never used.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets()
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.probeMetrics = NewProbeMetrics(cfg, registry)
	c.refreshMetrics = NewRefreshMetrics(cfg, registry)

	c.buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "build_info",
			Help:      "Build information, always 1",
		},
		[]string{"version", "commit"},
	)
	registry.MustRegister(c.buildInfo)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// SetBuildInfo publishes the running version.
func (c *Collector) SetBuildInfo(version, commit string) {
	if !c.enabled() {
		return
	}
	c.buildInfo.WithLabelValues(version, commit).Set(1)
}

// RecordHTTPRequest records a served request.
//
// route is the matched route name (e.g. "status", "not_found"), never the
// raw URL path, which keeps label cardinality bounded.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.requestMetrics.RecordRequest(route, method, status, duration)
}

// RecordServed records which kind of document answered a status request.
func (c *Collector) RecordServed(source string) {
	if !c.enabled() {
		return
	}
	c.requestMetrics.RecordServed(source)
}

// RecordProbeAttempt records one upstream request against a candidate path.
//
// outcome is "ok" for an accepted response, otherwise the failure kind
// ("timeout", "status", "invalid_json", ...).
func (c *Collector) RecordProbeAttempt(path, outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.probeMetrics.RecordAttempt(path, outcome, duration)
}

// RecordRefresh records a completed refresh cycle.
func (c *Collector) RecordRefresh(outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.refreshMetrics.RecordRefresh(outcome, duration)
}

// SetLastSuccess records the time of the latest successful refresh.
func (c *Collector) SetLastSuccess(t time.Time) {
	if !c.enabled() {
		return
	}
	c.refreshMetrics.SetLastSuccess(t)
}

// SetCacheSource marks which kind of document the cache currently holds.
func (c *Collector) SetCacheSource(source string) {
	if !c.enabled() {
		return
	}
	c.refreshMetrics.SetSource(source)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
