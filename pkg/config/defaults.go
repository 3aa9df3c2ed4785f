package config

import "time"

// Default values for configuration fields.
const (
	// Proxy defaults
	DefaultProxyHost       = "0.0.0.0"
	DefaultProxyPort       = 18795
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxHeaderBytes  = 64 * 1024

	// CORS defaults
	DefaultCORSMaxAge = 600

	// Gateway defaults
	DefaultGatewayScheme       = "http"
	DefaultGatewayHost         = "127.0.0.1"
	DefaultGatewayPort         = 18789
	DefaultGatewayTimeout      = 5000 * time.Millisecond
	DefaultGatewayMaxBodyBytes = int64(1 << 20)

	// Refresh defaults
	RefreshModeBackground  = "background"
	RefreshModeOnDemand    = "on_demand"
	DefaultRefreshMode     = RefreshModeBackground
	DefaultRefreshInterval = 30 * time.Second

	// Synthetic defaults
	DefaultSyntheticHostname = "AAI"

	// Telemetry defaults
	DefaultLoggingLevel      = "info"
	DefaultLoggingFormat     = "json"
	DefaultLoggingRedact     = true
	DefaultMetricsEnabled    = true
	DefaultMetricsPath       = "/metrics"
	DefaultMetricsNamespace  = "miyabi"
	DefaultMetricsSubsystem  = "statusproxy"
	DefaultTracingEnabled    = false
	DefaultTracingSampler    = "ratio"
	DefaultTracingSampleRate = 1.0
	DefaultTracingService    = "statusproxy"
	DefaultOTLPInsecure      = true
	DefaultOTLPTimeout       = 10 * time.Second
	DefaultHealthEnabled     = true
	DefaultLivenessPath      = "/healthz"
	DefaultReadinessPath     = "/readyz"
	DefaultVersionPath       = "/version"
	DefaultHealthTimeout     = 2 * time.Second
)

// DefaultStatusPaths are the proxy paths that serve the status document.
func DefaultStatusPaths() []string {
	return []string{"/status", "/"}
}

// DefaultGatewayPaths are the upstream candidate paths, in priority order.
func DefaultGatewayPaths() []string {
	return []string{"/status", "/", "/api/status", "/api/health", "/health", "/api/v1/status"}
}

// DefaultDurationBuckets covers sub-millisecond cache reads up to a slow
// full probe.
func DefaultDurationBuckets() []float64 {
	return []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
}

// NewDefaultConfig returns a configuration with every default applied,
// including the boolean defaults that ApplyDefaults cannot tell apart from
// an explicit false. Files are decoded on top of it.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Telemetry.Logging.Redact = DefaultLoggingRedact
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Enabled = DefaultTracingEnabled
	cfg.Telemetry.Tracing.OTLP.Insecure = DefaultOTLPInsecure
	cfg.Telemetry.Health.Enabled = DefaultHealthEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Proxy defaults
	if cfg.Proxy.Host == "" {
		cfg.Proxy.Host = DefaultProxyHost
	}
	if cfg.Proxy.Port == 0 {
		cfg.Proxy.Port = DefaultProxyPort
	}
	if cfg.Proxy.ReadTimeout == 0 {
		cfg.Proxy.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Proxy.WriteTimeout == 0 {
		cfg.Proxy.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if len(cfg.Proxy.StatusPaths) == 0 {
		cfg.Proxy.StatusPaths = DefaultStatusPaths()
	}
	if cfg.Proxy.TLS.MinVersion == "" {
		cfg.Proxy.TLS.MinVersion = "1.2"
	}

	applyCORSDefaults(cfg)

	// Gateway defaults
	if cfg.Gateway.Scheme == "" {
		cfg.Gateway.Scheme = DefaultGatewayScheme
	}
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = DefaultGatewayHost
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = DefaultGatewayPort
	}
	if len(cfg.Gateway.Paths) == 0 {
		cfg.Gateway.Paths = DefaultGatewayPaths()
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = DefaultGatewayTimeout
	}
	if cfg.Gateway.MaxBodyBytes == 0 {
		cfg.Gateway.MaxBodyBytes = DefaultGatewayMaxBodyBytes
	}

	// Refresh defaults
	if cfg.Refresh.Mode == "" {
		cfg.Refresh.Mode = DefaultRefreshMode
	}
	if cfg.Refresh.Interval == 0 {
		cfg.Refresh.Interval = DefaultRefreshInterval
	}

	if cfg.Synthetic.Hostname == "" {
		cfg.Synthetic.Hostname = DefaultSyntheticHostname
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = DefaultDurationBuckets()
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRate
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.VersionPath == "" {
		cfg.Telemetry.Health.VersionPath = DefaultVersionPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthTimeout
	}
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cfg *Config) {
	cors := &cfg.Proxy.CORS

	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID", "X-Status-Source", "X-Status-Updated-At"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}
