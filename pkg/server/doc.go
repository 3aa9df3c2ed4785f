// Package server provides the status proxy's HTTP server.
//
// It routes requests with gorilla/mux, wraps the router in the middleware
// chain and manages the listener lifecycle.
//
// # Routes
//
//	GET|HEAD  /status, /          cached status document
//	GET|HEAD  /healthz            liveness
//	GET|HEAD  /readyz             readiness (503 until a document is cached)
//	GET|HEAD  /version            build information
//	GET       /metrics            Prometheus exposition
//	OPTIONS   any path            204 with CORS headers
//
// Other methods on a known path get a JSON 405 and unknown paths a JSON 404.
// The status paths and the health and metrics paths are configurable;
// health and metrics endpoints can be disabled.
//
// # Basic Usage
//
//	srv := server.NewServer(cfg, refresher,
//	    server.WithHealth(checker),
//	    server.WithMetrics(collector),
//	    server.WithTracer(tracer),
//	    server.WithBuildInfo(version, commit, buildTime),
//	)
//	if err := srv.Listen(); err != nil {
//	    var lerr *server.ListenError
//	    if errors.As(err, &lerr) && lerr.AddrInUse() {
//	        // another process owns the port
//	    }
//	    return err
//	}
//	return srv.Start(ctx) // blocks until ctx is canceled
//
// # Graceful Shutdown
//
// When ctx is canceled the server stops accepting connections and waits up to
// proxy.shutdown_timeout for in-flight requests.
package server
