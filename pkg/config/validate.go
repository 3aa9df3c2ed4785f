package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "gateway.port").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateGateway(&cfg.Gateway)...)
	errs = append(errs, validateRefresh(&cfg.Refresh)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateRoutes(cfg)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateProxy validates listener configuration.
func validateProxy(cfg *ProxyConfig) []FieldError {
	var errs []FieldError

	if cfg.Host == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.host",
			Message: "host is required",
		})
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "proxy.port",
			Message: fmt.Sprintf("port %d out of range 1-65535", cfg.Port),
		})
	}

	// Validate timeouts are positive
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "proxy.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	errs = append(errs, validatePaths("proxy.status_paths", cfg.StatusPaths, false)...)

	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.cors.max_age",
			Message: "max age must be non-negative",
		})
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{
				Field:   "proxy.tls.cert_file",
				Message: "certificate file is required when TLS is enabled",
			})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   "proxy.tls.key_file",
				Message: "key file is required when TLS is enabled",
			})
		}
	}
	if cfg.TLS.ReloadInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.tls.reload_interval",
			Message: "reload interval must be non-negative",
		})
	}
	if cfg.TLS.MinVersion != "1.2" && cfg.TLS.MinVersion != "1.3" {
		errs = append(errs, FieldError{
			Field:   "proxy.tls.min_version",
			Message: fmt.Sprintf("invalid TLS version %q: must be '1.2' or '1.3'", cfg.TLS.MinVersion),
		})
	}

	return errs
}

// validateGateway validates the upstream gateway configuration.
func validateGateway(cfg *GatewayConfig) []FieldError {
	var errs []FieldError

	if cfg.Scheme != "http" && cfg.Scheme != "https" {
		errs = append(errs, FieldError{
			Field:   "gateway.scheme",
			Message: fmt.Sprintf("invalid scheme %q: must be 'http' or 'https'", cfg.Scheme),
		})
	}
	if cfg.Host == "" || strings.ContainsAny(cfg.Host, "/ ") {
		errs = append(errs, FieldError{
			Field:   "gateway.host",
			Message: fmt.Sprintf("invalid host %q", cfg.Host),
		})
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "gateway.port",
			Message: fmt.Sprintf("port %d out of range 1-65535", cfg.Port),
		})
	}

	errs = append(errs, validatePaths("gateway.paths", cfg.Paths, true)...)

	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "gateway.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.Timeout > 5*time.Minute {
		errs = append(errs, FieldError{
			Field:   "gateway.timeout",
			Message: "timeout exceeds reasonable limit (5m)",
		})
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "gateway.max_body_bytes",
			Message: "max body bytes must be positive",
		})
	}

	return errs
}

// validateRefresh validates the refresh schedule.
func validateRefresh(cfg *RefreshConfig) []FieldError {
	var errs []FieldError

	switch cfg.Mode {
	case RefreshModeBackground, RefreshModeOnDemand:
	default:
		errs = append(errs, FieldError{
			Field:   "refresh.mode",
			Message: fmt.Sprintf("invalid mode %q: must be 'background' or 'on_demand'", cfg.Mode),
		})
	}

	if cfg.Interval < time.Second {
		errs = append(errs, FieldError{
			Field:   "refresh.interval",
			Message: "interval must be at least 1s",
		})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "refresh.request_timeout",
			Message: "request timeout must be non-negative",
		})
	}
	if cfg.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "refresh.max_age",
			Message: "max age must be non-negative",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if _, err := regexp.Compile(p.Pattern); err != nil || p.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: fmt.Sprintf("invalid pattern %q", p.Pattern),
			})
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	// Validate tracing configuration
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	if cfg.Health.Enabled {
		for field, path := range map[string]string{
			"telemetry.health.liveness_path":  cfg.Health.LivenessPath,
			"telemetry.health.readiness_path": cfg.Health.ReadinessPath,
			"telemetry.health.version_path":   cfg.Health.VersionPath,
		} {
			if !strings.HasPrefix(path, "/") {
				errs = append(errs, FieldError{
					Field:   field,
					Message: "path must start with /",
				})
			}
		}
		if cfg.Health.CheckTimeout < 0 || cfg.Health.CheckTimeout > 60*time.Second {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.check_timeout",
				Message: "check timeout must be between 0 and 60s",
			})
		}
	}

	return errs
}

// validateRoutes rejects configurations where two endpoints share a path.
func validateRoutes(cfg *Config) []FieldError {
	var errs []FieldError

	owners := make(map[string]string)
	claim := func(path, field string) {
		if path == "" {
			return
		}
		if prev, ok := owners[path]; ok {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("path %q is already used by %s", path, prev),
			})
			return
		}
		owners[path] = field
	}

	for _, p := range cfg.Proxy.StatusPaths {
		claim(p, "proxy.status_paths")
	}
	if cfg.Telemetry.Health.Enabled {
		claim(cfg.Telemetry.Health.LivenessPath, "telemetry.health.liveness_path")
		claim(cfg.Telemetry.Health.ReadinessPath, "telemetry.health.readiness_path")
		claim(cfg.Telemetry.Health.VersionPath, "telemetry.health.version_path")
	}
	if cfg.Telemetry.Metrics.Enabled {
		claim(cfg.Telemetry.Metrics.Path, "telemetry.metrics.path")
	}

	return errs
}

func validatePaths(field string, paths []string, allowQuery bool) []FieldError {
	var errs []FieldError

	if len(paths) == 0 {
		return append(errs, FieldError{Field: field, Message: "at least one path is required"})
	}

	seen := make(map[string]bool, len(paths))
	for i, p := range paths {
		name := fmt.Sprintf("%s[%d]", field, i)
		switch {
		case !strings.HasPrefix(p, "/"):
			errs = append(errs, FieldError{Field: name, Message: fmt.Sprintf("path %q must start with /", p)})
		case !allowQuery && strings.ContainsAny(p, "?#"):
			errs = append(errs, FieldError{Field: name, Message: fmt.Sprintf("path %q must not contain a query", p)})
		case seen[p]:
			errs = append(errs, FieldError{Field: name, Message: fmt.Sprintf("duplicate path %q", p)})
		}
		seen[p] = true
	}

	return errs
}
