package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It starts from NewDefaultConfig, decodes the file on top, validates the
// result and returns any errors. An empty path yields the defaults.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from an optional YAML file
// and applies environment variable overrides (see applyEnvOverrides).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Start from defaults
// 2. Decode the YAML file, if any
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	envErrs := applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		var verr ValidationError
		if errors.As(err, &verr) {
			envErrs = append(envErrs, verr.Errors...)
		}
	}
	if len(envErrs) > 0 {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w",
			ValidationError{Errors: envErrs})
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped. With no arguments ".env" in the working directory is
// tried.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load env file %q: %w", file, err)
		}
	}
	return nil
}

func loadFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Unparseable values are reported as field errors instead of
// being silently ignored.
func applyEnvOverrides(cfg *Config) []FieldError {
	var errs []FieldError

	// Proxy overrides
	if val := os.Getenv("PROXY_HOST"); val != "" {
		cfg.Proxy.Host = val
	}
	if val := os.Getenv("PROXY_PORT"); val != "" {
		envInt(&errs, "PROXY_PORT", val, &cfg.Proxy.Port)
	}

	// Gateway overrides; the OPENCLAW_ names are what existing deployments set
	if val := firstEnv("GATEWAY_HOST", "OPENCLAW_GATEWAY_HOST"); val != "" {
		cfg.Gateway.Host = val
	}
	if val := firstEnv("GATEWAY_PORT", "OPENCLAW_GATEWAY_PORT"); val != "" {
		envInt(&errs, "GATEWAY_PORT", val, &cfg.Gateway.Port)
	}
	if val := os.Getenv("GATEWAY_SCHEME"); val != "" {
		cfg.Gateway.Scheme = strings.ToLower(val)
	}
	if val := firstEnv("GATEWAY_TOKEN", "OPENCLAW_GATEWAY_TOKEN"); val != "" {
		cfg.Gateway.Token = val
	}
	if val := os.Getenv("GATEWAY_PATHS"); val != "" {
		cfg.Gateway.Paths = splitList(val)
	}
	if val := os.Getenv("PROXY_TIMEOUT_MS"); val != "" {
		var ms int
		if envInt(&errs, "PROXY_TIMEOUT_MS", val, &ms) {
			cfg.Gateway.Timeout = time.Duration(ms) * time.Millisecond
		}
	}

	// Refresh overrides
	if val := os.Getenv("REFRESH_INTERVAL_SECONDS"); val != "" {
		var secs int
		if envInt(&errs, "REFRESH_INTERVAL_SECONDS", val, &secs) {
			cfg.Refresh.Interval = time.Duration(secs) * time.Second
		}
	}
	if val := os.Getenv("REFRESH_MODE"); val != "" {
		cfg.Refresh.Mode = strings.ToLower(strings.ReplaceAll(val, "-", "_"))
	}

	if val := os.Getenv("SYNTHETIC_HOSTNAME"); val != "" {
		cfg.Synthetic.Hostname = val
	}

	// Telemetry overrides
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = strings.ToLower(val)
	}
	if val := os.Getenv("METRICS_ENABLED"); val != "" {
		envBool(&errs, "METRICS_ENABLED", val, &cfg.Telemetry.Metrics.Enabled)
	}
	if val := os.Getenv("TRACING_ENABLED"); val != "" {
		envBool(&errs, "TRACING_ENABLED", val, &cfg.Telemetry.Tracing.Enabled)
	}
	if val := os.Getenv("TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}

	return errs
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			return val
		}
	}
	return ""
}

func envInt(errs *[]FieldError, name, val string, dst *int) bool {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		*errs = append(*errs, FieldError{
			Field:   "env." + name,
			Message: fmt.Sprintf("invalid integer %q", val),
		})
		return false
	}
	*dst = n
	return true
}

func envBool(errs *[]FieldError, name, val string, dst *bool) {
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		*errs = append(*errs, FieldError{
			Field:   "env." + name,
			Message: fmt.Sprintf("invalid boolean %q", val),
		})
		return
	}
	*dst = b
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
