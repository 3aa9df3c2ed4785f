// Package config provides configuration management for the status proxy.
//
// Configuration comes from an optional YAML file, a .env file and the
// process environment. Values are validated before use.
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file, if one is given
//  3. Environment variables (a .env file can pre-populate them, see LoadDotEnv)
//  4. Validation (fails fast if invalid)
//
// # Environment Variables
//
//   - PROXY_HOST, PROXY_PORT: listener bind address (default 0.0.0.0:18795)
//   - GATEWAY_HOST, GATEWAY_PORT, GATEWAY_SCHEME: upstream gateway
//     (OPENCLAW_GATEWAY_HOST and OPENCLAW_GATEWAY_PORT are accepted too)
//   - GATEWAY_TOKEN: bearer token passed to the gateway
//   - GATEWAY_PATHS: comma separated candidate paths, in priority order
//   - PROXY_TIMEOUT_MS: per-path probe timeout (default 5000)
//   - SYNTHETIC_HOSTNAME: host reported in synthesized documents
//   - REFRESH_INTERVAL_SECONDS, REFRESH_MODE: refresh schedule
//   - LOG_LEVEL, LOG_FORMAT, METRICS_ENABLED, TRACING_ENABLED, TRACING_ENDPOINT
//
// # Example Configuration
//
//	proxy:
//	  port: 18795
//
//	gateway:
//	  host: "127.0.0.1"
//	  port: 18789
//	  timeout: "5s"
//	  paths: ["/status", "/", "/api/status"]
//
//	refresh:
//	  mode: "background"
//	  interval: "30s"
//
//	synthetic:
//	  hostname: "AAI"
//
// # Hot Reload
//
// Watcher reloads the file when it changes. Gateway, candidate paths,
// timeout, token and synthetic hostname take effect on the next refresh;
// listener and schedule changes need a restart.
//
// # Thread Safety
//
// The singleton accessors (Initialize, GetConfig, ReloadConfig) are safe for
// concurrent use. A *Config is treated as immutable once published.
package config
