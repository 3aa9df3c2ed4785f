package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"miyabi-hq/statusproxy/pkg/cache"
	"miyabi-hq/statusproxy/pkg/cli"
	"miyabi-hq/statusproxy/pkg/config"
	"miyabi-hq/statusproxy/pkg/prober"
	"miyabi-hq/statusproxy/pkg/refresher"
	"miyabi-hq/statusproxy/pkg/server"
	"miyabi-hq/statusproxy/pkg/telemetry/health"
	"miyabi-hq/statusproxy/pkg/telemetry/logging"
	"miyabi-hq/statusproxy/pkg/telemetry/metrics"
	"miyabi-hq/statusproxy/pkg/telemetry/tracing"

	"github.com/spf13/cobra"
)

var runFlags struct {
	port     int
	logLevel string
	mode     string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the status proxy",
	Long: `Start the status proxy with the specified configuration.

The proxy warms its cache with one probe of the gateway, then serves the
cached document on the configured status paths. In background mode the
cache is refreshed on a timer; in on_demand mode requests trigger a refresh.

Send SIGHUP to reload the configuration. With --config the file is also
watched and reloaded when it changes.

Examples:
  # Start with defaults
  statusproxy run

  # Start with custom config
  statusproxy run --config /etc/statusproxy/config.yaml

  # Override the listen port
  statusproxy run --port 18800`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runFlags.port, "port", "p", 0, "override listen port")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runFlags.mode, "mode", "", "override refresh mode (background, on_demand)")
}

func applyRunFlags(cfg *config.Config) {
	if runFlags.port != 0 {
		cfg.Proxy.Port = runFlags.port
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if runFlags.mode != "" {
		cfg.Refresh.Mode = runFlags.mode
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := loadDotEnv(); err != nil {
		return err
	}
	if err := config.Initialize(cfgFile); err != nil {
		return err
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	applyRunFlags(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger, err := logging.New(logging.FromConfig(&cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	collector.SetBuildInfo(Version, GitCommit)

	pcfg, client, err := newProberConfig(cfg)
	if err != nil {
		return cli.NewConfigError("gateway", err.Error())
	}
	p, err := prober.New(pcfg,
		prober.WithRecorder(collector),
		prober.WithTracer(tracer),
		prober.WithLogger(logger),
	)
	if err != nil {
		return cli.NewConfigError("gateway", err.Error())
	}

	ref, err := refresher.New(refresher.FromConfig(cfg), p, cache.NewMemory(),
		refresher.WithRecorder(collector),
		refresher.WithTracer(tracer),
		refresher.WithLogger(logger),
	)
	if err != nil {
		return cli.NewConfigError("refresh", err.Error())
	}

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.Register("status_cache", true, ref.Ready)
	checker.Register("gateway", false, ref.Healthy)

	srv := server.NewServer(cfg, ref,
		server.WithHealth(checker),
		server.WithMetrics(collector),
		server.WithTracer(tracer),
		server.WithBuildInfo(Version, GitCommit, BuildDate),
	)
	if err := srv.Listen(); err != nil {
		var lerr *server.ListenError
		if errors.As(err, &lerr) && lerr.AddrInUse() {
			fmt.Fprintf(os.Stderr, "Port %d is already in use. Stop the other process or set PROXY_PORT to a free port.\n",
				cfg.Proxy.Port)
		}
		return cli.NewCommandError("run", err)
	}

	if err := ref.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer ref.Stop()

	rl := &reloader{
		current: cfg,
		client:  client,
		prober:  p,
		logger:  logger,
		adjust:  applyRunFlags,
	}
	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, config.DefaultDebounceInterval, logger)
		if err != nil {
			logger.Warn("config hot reload disabled", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx, rl.apply); err != nil {
					logger.Error("config watcher failed", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}
	go reloadOnSignal(ctx, rl, logger)

	printBanner(cfg, srv.Addr(), ref.NextRun())

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// reloadOnSignal reloads the configuration on every SIGHUP until ctx ends.
func reloadOnSignal(ctx context.Context, rl *reloader, logger *slog.Logger) {
	hup, stop := cli.ReloadSignal()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			cfg, err := config.ReloadConfig(cfgFile)
			if err != nil {
				logger.Error("config reload failed, keeping previous configuration", "error", err)
				continue
			}
			logger.Info("configuration reloaded", "trigger", "SIGHUP")
			rl.apply(cfg)
		}
	}
}

func printBanner(cfg *config.Config, addr string, next *time.Time) {
	fmt.Printf("statusproxy v%s\n", Version)
	if cfgFile != "" {
		fmt.Printf("✓ Configuration loaded from %s\n", cfgFile)
	} else {
		fmt.Println("✓ Configuration loaded from defaults and environment")
	}
	fmt.Printf("✓ Gateway %s (%d candidate paths, %s each)\n",
		cfg.Gateway.BaseURL(), len(cfg.Gateway.Paths), cfg.Gateway.Timeout)
	if cfg.Refresh.Mode == config.RefreshModeBackground {
		if next != nil {
			fmt.Printf("✓ Refreshing every %s (next at %s)\n", cfg.Refresh.Interval, next.Format("15:04:05"))
		} else {
			fmt.Printf("✓ Refreshing every %s\n", cfg.Refresh.Interval)
		}
	} else {
		fmt.Println("✓ Refreshing on demand")
	}

	scheme := "http"
	if cfg.Proxy.TLS.Enabled {
		scheme = "https"
	}
	fmt.Printf("✓ Listening on %s://%s\n", scheme, addr)
	fmt.Printf("✓ Status paths: %s\n", strings.Join(cfg.Proxy.StatusPaths, ", "))
	if cfg.Telemetry.Health.Enabled {
		fmt.Printf("✓ Readiness endpoint: %s\n", cfg.Telemetry.Health.ReadinessPath)
	}
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: %s\n", cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")
}
