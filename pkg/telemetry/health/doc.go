// Package health provides liveness, readiness and version endpoints.
//
// Liveness answers 200 as long as the process runs. Readiness runs the
// registered checks; the proxy registers a critical "status_cache" check
// (a refresh has completed at least once) and a non-critical "gateway"
// check (the most recent refresh succeeded).
//
//	checker := health.New(2 * time.Second)
//	checker.Register("gateway", false, func(ctx context.Context) error { ... })
//	router.Handle("/readyz", checker.ReadinessHandler())
package health
