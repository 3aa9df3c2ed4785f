package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable applyEnvOverrides reads for the test's duration.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PROXY_HOST", "PROXY_PORT",
		"GATEWAY_HOST", "GATEWAY_PORT", "OPENCLAW_GATEWAY_HOST", "OPENCLAW_GATEWAY_PORT",
		"GATEWAY_SCHEME", "GATEWAY_TOKEN", "OPENCLAW_GATEWAY_TOKEN", "GATEWAY_PATHS",
		"PROXY_TIMEOUT_MS", "REFRESH_INTERVAL_SECONDS", "REFRESH_MODE", "SYNTHETIC_HOSTNAME",
		"LOG_LEVEL", "LOG_FORMAT", "METRICS_ENABLED", "TRACING_ENABLED", "TRACING_ENDPOINT",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statusproxy.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_NoFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error = %v", err)
	}

	if got := cfg.Proxy.ListenAddress(); got != "0.0.0.0:18795" {
		t.Errorf("ListenAddress() = %q, want 0.0.0.0:18795", got)
	}
	if got := cfg.Gateway.BaseURL(); got != "http://127.0.0.1:18789" {
		t.Errorf("BaseURL() = %q", got)
	}
	if cfg.Gateway.Timeout != 5*time.Second {
		t.Errorf("Gateway.Timeout = %v, want 5s", cfg.Gateway.Timeout)
	}
	if !reflect.DeepEqual(cfg.Gateway.Paths, DefaultGatewayPaths()) {
		t.Errorf("Gateway.Paths = %v", cfg.Gateway.Paths)
	}
	if cfg.Refresh.Mode != RefreshModeBackground || cfg.Refresh.Interval != 30*time.Second {
		t.Errorf("Refresh = %+v", cfg.Refresh)
	}
	if cfg.Synthetic.Hostname != "AAI" {
		t.Errorf("Synthetic.Hostname = %q", cfg.Synthetic.Hostname)
	}
	if !cfg.Telemetry.Metrics.Enabled || !cfg.Telemetry.Health.Enabled || !cfg.Telemetry.Logging.Redact {
		t.Error("boolean defaults not applied")
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
proxy:
  host: "127.0.0.1"
  port: 9000
  status_paths: ["/status"]

gateway:
  host: "gw.lan"
  port: 8080
  scheme: "https"
  paths: ["/api/status", "/"]
  timeout: "2500ms"

refresh:
  mode: "on_demand"
  interval: "10s"
  max_age: "5s"

synthetic:
  hostname: "mac-mini"

telemetry:
  logging:
    level: "debug"
    format: "text"
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Proxy.ListenAddress() != "127.0.0.1:9000" {
		t.Errorf("ListenAddress() = %q", cfg.Proxy.ListenAddress())
	}
	if cfg.Gateway.BaseURL() != "https://gw.lan:8080" {
		t.Errorf("BaseURL() = %q", cfg.Gateway.BaseURL())
	}
	if !reflect.DeepEqual(cfg.Gateway.Paths, []string{"/api/status", "/"}) {
		t.Errorf("Gateway.Paths = %v", cfg.Gateway.Paths)
	}
	if cfg.Gateway.Timeout != 2500*time.Millisecond {
		t.Errorf("Gateway.Timeout = %v", cfg.Gateway.Timeout)
	}
	if cfg.Refresh.Mode != RefreshModeOnDemand || cfg.Refresh.MaxAge != 5*time.Second {
		t.Errorf("Refresh = %+v", cfg.Refresh)
	}
	if cfg.Synthetic.Hostname != "mac-mini" {
		t.Errorf("Synthetic.Hostname = %q", cfg.Synthetic.Hostname)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("explicit metrics.enabled=false was overwritten by the default")
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read configuration file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "gateway:\n  port: [unclosed\n")

	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse configuration file") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
gateway:
  port: 70000
refresh:
  mode: "sometimes"
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("expected 2 field errors, got %v", verr.Errors)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
gateway:
  host: "from-file"
  port: 1111
`)

	t.Setenv("PROXY_PORT", "28795")
	t.Setenv("PROXY_HOST", "127.0.0.1")
	t.Setenv("GATEWAY_HOST", "10.0.0.5")
	t.Setenv("GATEWAY_PORT", "28789")
	t.Setenv("GATEWAY_TOKEN", "tkn")
	t.Setenv("GATEWAY_PATHS", "/status, /health ,")
	t.Setenv("PROXY_TIMEOUT_MS", "1500")
	t.Setenv("SYNTHETIC_HOSTNAME", "studio")
	t.Setenv("REFRESH_INTERVAL_SECONDS", "15")
	t.Setenv("REFRESH_MODE", "on-demand")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Proxy.ListenAddress() != "127.0.0.1:28795" {
		t.Errorf("ListenAddress() = %q", cfg.Proxy.ListenAddress())
	}
	if cfg.Gateway.BaseURL() != "http://10.0.0.5:28789" {
		t.Errorf("BaseURL() = %q", cfg.Gateway.BaseURL())
	}
	if cfg.Gateway.Token != "tkn" {
		t.Errorf("Token = %q", cfg.Gateway.Token)
	}
	if !reflect.DeepEqual(cfg.Gateway.Paths, []string{"/status", "/health"}) {
		t.Errorf("Paths = %v", cfg.Gateway.Paths)
	}
	if cfg.Gateway.Timeout != 1500*time.Millisecond {
		t.Errorf("Timeout = %v", cfg.Gateway.Timeout)
	}
	if cfg.Synthetic.Hostname != "studio" {
		t.Errorf("Hostname = %q", cfg.Synthetic.Hostname)
	}
	if cfg.Refresh.Interval != 15*time.Second || cfg.Refresh.Mode != RefreshModeOnDemand {
		t.Errorf("Refresh = %+v", cfg.Refresh)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Level = %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("METRICS_ENABLED=false not applied")
	}
}

func TestLoadConfigWithEnvOverrides_LegacyNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENCLAW_GATEWAY_HOST", "192.168.1.20")
	t.Setenv("OPENCLAW_GATEWAY_PORT", "18790")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Gateway.BaseURL() != "http://192.168.1.20:18790" {
		t.Errorf("BaseURL() = %q", cfg.Gateway.BaseURL())
	}

	t.Setenv("GATEWAY_HOST", "preferred")
	cfg, err = LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Gateway.Host != "preferred" {
		t.Errorf("GATEWAY_HOST should win over OPENCLAW_GATEWAY_HOST, got %q", cfg.Gateway.Host)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidEnvValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
		field string
	}{
		{"port not a number", "PROXY_PORT", "eighty", "env.PROXY_PORT"},
		{"timeout not a number", "PROXY_TIMEOUT_MS", "5s", "env.PROXY_TIMEOUT_MS"},
		{"interval not a number", "REFRESH_INTERVAL_SECONDS", "x", "env.REFRESH_INTERVAL_SECONDS"},
		{"bool", "TRACING_ENABLED", "maybe", "env.TRACING_ENABLED"},
		{"port out of range", "GATEWAY_PORT", "-1", "gateway.port"},
		{"bad mode", "REFRESH_MODE", "lazy", "refresh.mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.env, tt.value)

			_, err := LoadConfigWithEnvOverrides("")
			if err == nil {
				t.Fatal("expected error")
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("SYNTHETIC_HOSTNAME=from-dotenv\nGATEWAY_PORT=19999\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GATEWAY_PORT", "18000")
	os.Unsetenv("SYNTHETIC_HOSTNAME")
	t.Cleanup(func() { os.Unsetenv("SYNTHETIC_HOSTNAME") })

	if err := LoadDotEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	if got := os.Getenv("SYNTHETIC_HOSTNAME"); got != "from-dotenv" {
		t.Errorf("SYNTHETIC_HOSTNAME = %q", got)
	}
	if got := os.Getenv("GATEWAY_PORT"); got != "18000" {
		t.Errorf("existing GATEWAY_PORT was overridden: %q", got)
	}
}
