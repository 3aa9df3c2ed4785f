package config

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config is the root configuration structure for the status proxy.
// It contains the listener, the upstream gateway, the refresh schedule,
// synthesized document settings and telemetry.
type Config struct {
	// Proxy contains HTTP listener configuration including bind address,
	// timeouts, served status paths and CORS.
	Proxy ProxyConfig `yaml:"proxy"`

	// Gateway describes the upstream gateway and how it is probed.
	Gateway GatewayConfig `yaml:"gateway"`

	// Refresh controls when the cached status document is refreshed.
	Refresh RefreshConfig `yaml:"refresh"`

	// Synthetic contains settings for documents built by the proxy itself.
	Synthetic SyntheticConfig `yaml:"synthetic"`

	// Telemetry contains configuration for observability including logging,
	// metrics, tracing and health endpoints.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProxyConfig contains configuration for the HTTP listener.
type ProxyConfig struct {
	// Host is the interface to bind to.
	// Default: "0.0.0.0"
	Host string `yaml:"host"`

	// Port is the TCP port to listen on.
	// Default: 18795
	Port int `yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must leave room for an on-demand refresh.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 65536
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// StatusPaths are the paths that serve the status document.
	// Default: ["/status", "/"]
	StatusPaths []string `yaml:"status_paths"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// TLS optionally serves the proxy over HTTPS.
	TLS TLSConfig `yaml:"tls"`
}

// ListenAddress returns the host:port the proxy binds to.
func (p ProxyConfig) ListenAddress() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// CORSConfig contains CORS configuration. CORS headers are always sent;
// dashboards call the proxy cross-origin.
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers.
	// Default: ["Content-Type", "Authorization"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers exposed to browser clients.
	// Default: ["X-Request-ID", "X-Status-Source", "X-Status-Updated-At"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds (0 omits the header).
	// Default: 600
	MaxAge int `yaml:"max_age"`
}

// TLSConfig contains TLS configuration for the listener.
type TLSConfig struct {
	// Enabled controls whether TLS is enabled.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the TLS certificate file.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the TLS private key file.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept ("1.2" or "1.3").
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the certificate files are checked for
	// renewal. 0 loads them once at startup.
	// Default: 0
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// GatewayConfig describes the upstream gateway.
type GatewayConfig struct {
	// Scheme is "http" or "https".
	// Default: "http"
	Scheme string `yaml:"scheme"`

	// Host is the gateway hostname or IP.
	// Default: "127.0.0.1"
	Host string `yaml:"host"`

	// Port is the gateway port.
	// Default: 18789
	Port int `yaml:"port"`

	// Token is sent as "Authorization: Bearer <token>" when set.
	Token string `yaml:"token"`

	// Paths are the candidate paths probed in order; the first usable
	// answer wins.
	// Default: ["/status", "/", "/api/status", "/api/health", "/health", "/api/v1/status"]
	Paths []string `yaml:"paths"`

	// Timeout bounds each candidate path request.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`

	// MaxBodyBytes limits how much of a response is read.
	// Default: 1048576
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// UserAgent overrides the User-Agent header (default "statusproxy/<version>").
	UserAgent string `yaml:"user_agent"`
}

// BaseURL returns the gateway root URL.
func (g GatewayConfig) BaseURL() string {
	u := url.URL{
		Scheme: g.Scheme,
		Host:   net.JoinHostPort(g.Host, strconv.Itoa(g.Port)),
	}
	return u.String()
}

// RefreshConfig controls the cache refresh schedule.
type RefreshConfig struct {
	// Mode is "background" (refresh on a timer, requests read the cache) or
	// "on_demand" (a request triggers a refresh unless one is pending).
	// Default: "background"
	Mode string `yaml:"mode"`

	// Interval is the background refresh period.
	// Default: 30s
	Interval time.Duration `yaml:"interval"`

	// RequestTimeout bounds how long an on-demand request waits for a
	// refresh before falling back to the cache.
	// Default: 0 (derived from gateway timeout and path count)
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxAge lets on-demand mode serve a cached document younger than this
	// without probing. 0 probes on every request.
	// Default: 0
	MaxAge time.Duration `yaml:"max_age"`
}

// WaitTimeout returns how long an on-demand request waits for a refresh.
// When RequestTimeout is unset it is the worst case of probing every path
// plus one second.
func (c *Config) WaitTimeout() time.Duration {
	if c.Refresh.RequestTimeout > 0 {
		return c.Refresh.RequestTimeout
	}
	return c.Gateway.Timeout*time.Duration(len(c.Gateway.Paths)) + time.Second
}

// SyntheticConfig contains settings for synthesized documents.
type SyntheticConfig struct {
	// Hostname is reported as "host" in synthesized documents.
	// Default: "AAI"
	Hostname string `yaml:"hostname"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// Redact masks bearer tokens and configured patterns in log output.
	// Default: true
	Redact bool `yaml:"redact"`

	// RedactPatterns contains additional redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "miyabi"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "statusproxy"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for request and probe
	// durations (seconds).
	// Default: [0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "statusproxy"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration. The default
// paths avoid /health so they never shadow an upstream-style route.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/healthz"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/readyz"
	ReadinessPath string `yaml:"readiness_path"`

	// VersionPath is the path for the version information endpoint.
	// Default: "/version"
	VersionPath string `yaml:"version_path"`

	// CheckTimeout is the timeout for individual health checks.
	// Default: 2s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
