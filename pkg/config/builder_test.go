package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg *Config
}

// NewTestConfig creates a new ConfigBuilder with defaults applied.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	return &ConfigBuilder{cfg: NewDefaultConfig()}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return b.cfg
}

// WithGateway sets the gateway host and port.
func (b *ConfigBuilder) WithGateway(host string, port int) *ConfigBuilder {
	b.cfg.Gateway.Host = host
	b.cfg.Gateway.Port = port
	return b
}

// WithGatewayPaths sets the candidate paths.
func (b *ConfigBuilder) WithGatewayPaths(paths ...string) *ConfigBuilder {
	b.cfg.Gateway.Paths = paths
	return b
}

// WithGatewayTimeout sets the per-path timeout.
func (b *ConfigBuilder) WithGatewayTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Gateway.Timeout = d
	return b
}

// WithRefreshMode sets the refresh mode.
func (b *ConfigBuilder) WithRefreshMode(mode string) *ConfigBuilder {
	b.cfg.Refresh.Mode = mode
	return b
}

// WithLogLevel sets the logging level.
func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}
