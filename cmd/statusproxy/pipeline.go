package main

import (
	"log/slog"
	"slices"
	"sync"

	"miyabi-hq/statusproxy/pkg/config"
	"miyabi-hq/statusproxy/pkg/gateway"
	"miyabi-hq/statusproxy/pkg/normalizer"
	"miyabi-hq/statusproxy/pkg/prober"
)

// newProberConfig builds a gateway client and the prober settings for cfg.
// The caller owns the client.
func newProberConfig(cfg *config.Config) (prober.Config, *gateway.Client, error) {
	ua := cfg.Gateway.UserAgent
	if ua == "" {
		ua = userAgent()
	}

	client, err := gateway.New(gateway.Config{
		BaseURL:      cfg.Gateway.BaseURL(),
		Token:        cfg.Gateway.Token,
		UserAgent:    ua,
		MaxBodyBytes: cfg.Gateway.MaxBodyBytes,
	})
	if err != nil {
		return prober.Config{}, nil, err
	}

	return prober.Config{
		Fetcher:    client,
		Normalizer: normalizer.New(normalizer.Config{Hostname: cfg.Synthetic.Hostname}),
		Paths:      cfg.Gateway.Paths,
		Timeout:    cfg.Gateway.Timeout,
	}, client, nil
}

// restartRequired lists the settings that differ between old and next but
// are only read at startup.
func restartRequired(old, next *config.Config) []string {
	var fields []string
	if old.Proxy.Host != next.Proxy.Host {
		fields = append(fields, "proxy.host")
	}
	if old.Proxy.Port != next.Proxy.Port {
		fields = append(fields, "proxy.port")
	}
	if old.Proxy.TLS != next.Proxy.TLS {
		fields = append(fields, "proxy.tls")
	}
	if !slices.Equal(old.Proxy.StatusPaths, next.Proxy.StatusPaths) {
		fields = append(fields, "proxy.status_paths")
	}
	if old.Refresh != next.Refresh {
		fields = append(fields, "refresh")
	}
	if old.Telemetry.Logging.Level != next.Telemetry.Logging.Level ||
		old.Telemetry.Logging.Format != next.Telemetry.Logging.Format {
		fields = append(fields, "telemetry.logging")
	}
	return fields
}

// reloader applies reloaded configuration to a running prober.
type reloader struct {
	mu      sync.Mutex
	current *config.Config
	client  *gateway.Client
	prober  *prober.Prober
	logger  *slog.Logger

	// adjust applies command line overrides to every reloaded config
	adjust func(*config.Config)
}

func (r *reloader) apply(cfg *config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.adjust != nil {
		r.adjust(cfg)
	}

	pcfg, client, err := newProberConfig(cfg)
	if err != nil {
		r.logger.Error("reloaded gateway settings rejected", "error", err)
		return
	}
	if err := r.prober.Reconfigure(pcfg); err != nil {
		client.CloseIdleConnections()
		r.logger.Error("reloaded gateway settings rejected", "error", err)
		return
	}

	if r.client != nil {
		r.client.CloseIdleConnections()
	}
	r.client = client

	for _, field := range restartRequired(r.current, cfg) {
		r.logger.Warn("configuration change takes effect after restart", "field", field)
	}
	r.current = cfg

	r.logger.Info("gateway settings applied",
		"gateway", cfg.Gateway.BaseURL(),
		"paths", cfg.Gateway.Paths,
		"timeout", cfg.Gateway.Timeout.String(),
		"synthetic_host", pcfg.Normalizer.Hostname(),
	)
}
