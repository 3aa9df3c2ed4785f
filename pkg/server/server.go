package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"miyabi-hq/statusproxy/pkg/config"
	"miyabi-hq/statusproxy/pkg/proxy/handlers"
	"miyabi-hq/statusproxy/pkg/proxy/middleware"
	"miyabi-hq/statusproxy/pkg/telemetry/health"
	"miyabi-hq/statusproxy/pkg/telemetry/metrics"
	"miyabi-hq/statusproxy/pkg/telemetry/tracing"

	"github.com/gorilla/mux"
)

// Route names, used as the metrics route label.
const (
	RouteStatus           = "status"
	RouteLiveness         = "liveness"
	RouteReadiness        = "readiness"
	RouteVersion          = "version"
	RouteMetrics          = "metrics"
	RouteUnmatched        = "unmatched"
	RouteMethodNotAllowed = "method_not_allowed"
)

// Server is the status proxy's HTTP server.
type Server struct {
	config *config.Config
	source handlers.Source

	health    *health.Checker
	collector *metrics.Collector
	tracer    *tracing.Tracer

	version   string
	commit    string
	buildTime string

	httpServer *http.Server
	listener   net.Listener
	certs      *certReloader

	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithHealth serves the liveness and readiness endpoints from checker.
func WithHealth(checker *health.Checker) Option {
	return func(s *Server) { s.health = checker }
}

// WithMetrics records HTTP metrics and serves the metrics endpoint.
func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Server) { s.collector = collector }
}

// WithTracer wraps each request in a server span.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithBuildInfo sets what the version endpoint reports.
func WithBuildInfo(version, commit, buildTime string) Option {
	return func(s *Server) {
		s.version = version
		s.commit = commit
		s.buildTime = buildTime
	}
}

// NewServer creates a server that serves documents from source.
func NewServer(cfg *config.Config, source handlers.Source, opts ...Option) *Server {
	s := &Server{
		config:  cfg,
		source:  source,
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = tracing.Noop()
	}
	return s
}

// Listen binds the listener without serving. Calling it before Start
// surfaces bind errors such as an address already in use synchronously.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}

	addr := s.config.Proxy.ListenAddress()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &ListenError{Addr: addr, Err: err}
	}

	if s.config.Proxy.TLS.Enabled {
		tlsConfig, certs, err := configureTLS(&s.config.Proxy.TLS)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		ln = newTLSListener(ln, tlsConfig)
		s.certs = certs
	}

	s.listener = ln
	return nil
}

// Addr returns the bound address, or "" before Listen.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start serves until ctx is canceled or the server fails, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	s.isRunning = true

	proxyCfg := &s.config.Proxy
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    proxyCfg.ReadTimeout,
		WriteTimeout:   proxyCfg.WriteTimeout,
		IdleTimeout:    proxyCfg.IdleTimeout,
		MaxHeaderBytes: proxyCfg.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}
	httpServer, ln, certs := s.httpServer, s.listener, s.certs
	s.mu.Unlock()

	if certs != nil && proxyCfg.TLS.ReloadInterval > 0 {
		go certs.watch(ctx, proxyCfg.TLS.ReloadInterval)
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting status proxy",
			"address", ln.Addr().String(),
			"tls_enabled", proxyCfg.TLS.Enabled,
			"status_paths", proxyCfg.StatusPaths,
		)

		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running, httpServer := s.isRunning, s.httpServer
		s.mu.Unlock()
		if !running || httpServer == nil {
			return
		}

		timeout := s.config.Proxy.ShutdownTimeout
		slog.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("status proxy stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	router := s.routes()

	var handler http.Handler = router
	handler = middleware.CORSMiddleware(&s.config.Proxy.CORS)(handler)
	handler = tracing.Middleware(s.tracer)(handler)
	if s.collector != nil {
		handler = middleware.MetricsMiddleware(s.collector, routeNamer(router))(handler)
	}
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	readMethods := []string{http.MethodGet, http.MethodHead}

	status := handlers.NewStatusHandler(s.source, s.collector)
	for _, path := range s.config.Proxy.StatusPaths {
		r.Handle(path, status).Methods(readMethods...).Name(RouteStatus + ":" + path)
	}

	healthCfg := &s.config.Telemetry.Health
	if healthCfg.Enabled {
		if s.health != nil {
			r.Handle(healthCfg.LivenessPath, s.health.LivenessHandler()).Methods(readMethods...).Name(RouteLiveness)
			r.Handle(healthCfg.ReadinessPath, s.health.ReadinessHandler()).Methods(readMethods...).Name(RouteReadiness)
		}
		r.Handle(healthCfg.VersionPath, health.VersionHandler(s.version, s.commit, s.buildTime)).
			Methods(readMethods...).Name(RouteVersion)
	}

	metricsCfg := &s.config.Telemetry.Metrics
	if metricsCfg.Enabled && s.collector != nil {
		r.Handle(metricsCfg.Path, s.collector.Handler()).Methods(http.MethodGet).Name(RouteMetrics)
	}

	r.NotFoundHandler = handlers.NotFoundHandler()
	r.MethodNotAllowedHandler = handlers.MethodNotAllowedHandler(http.MethodGet, http.MethodHead, http.MethodOptions)

	return r
}

// routeNamer maps a request to its route name. Status paths share one label.
func routeNamer(router *mux.Router) func(*http.Request) string {
	return func(r *http.Request) string {
		var match mux.RouteMatch
		if !router.Match(r, &match) || match.Route == nil {
			if errors.Is(match.MatchErr, mux.ErrMethodMismatch) {
				return RouteMethodNotAllowed
			}
			return RouteUnmatched
		}
		name := match.Route.GetName()
		if strings.HasPrefix(name, RouteStatus+":") {
			return RouteStatus
		}
		return name
	}
}
