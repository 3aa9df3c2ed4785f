package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Status values reported by checks and by the aggregate.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// DefaultCheckTimeout bounds a single check when none is configured.
const DefaultCheckTimeout = 2 * time.Second

// CheckFunc is a function that performs a health check for a component.
// It returns nil if the component is healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
	Critical   bool    `json:"critical"`
	DurationMs float64 `json:"duration_ms"`
}

// HealthStatus is the aggregate answer for a probe endpoint.
type HealthStatus struct {
	// Status is "ok" for liveness, otherwise "ready", "degraded" or "unhealthy"
	Status string `json:"status"`

	Checks map[string]CheckResult `json:"checks,omitempty"`

	// Uptime is only reported by liveness
	Uptime string `json:"uptime,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

type check struct {
	fn       CheckFunc
	critical bool
}

// Checker runs named readiness checks.
//
// A failing critical check makes the proxy unhealthy (503). A failing
// non-critical check only degrades it; the endpoint still answers 200
// because the proxy keeps serving its cached document.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]check
	timeout time.Duration
	started time.Time
	now     func() time.Time
}

// New creates a checker. A zero timeout means DefaultCheckTimeout.
func New(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &Checker{
		checks:  make(map[string]check),
		timeout: timeout,
		started: time.Now(),
		now:     time.Now,
	}
}

// Register adds or replaces a named check.
func (c *Checker) Register(name string, critical bool, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check{fn: fn, critical: critical}
}

// Unregister removes a named check.
func (c *Checker) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// Names returns the registered check names in sorted order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckLiveness reports that the process is up.
func (c *Checker) CheckLiveness(context.Context) HealthStatus {
	now := c.now()
	return HealthStatus{
		Status:    StatusOK,
		Uptime:    now.Sub(c.started).Round(time.Second).String(),
		Timestamp: now,
	}
}

// CheckReadiness runs every registered check concurrently.
func (c *Checker) CheckReadiness(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]check, len(c.checks))
	for name, ch := range c.checks {
		checks[name] = ch
	}
	c.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for name, ch := range checks {
		wg.Add(1)
		go func(name string, ch check) {
			defer wg.Done()
			result := c.run(ctx, ch)

			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, ch)
	}
	wg.Wait()

	status := StatusReady
	for _, result := range results {
		if result.Status == StatusOK {
			continue
		}
		if result.Critical {
			status = StatusUnhealthy
			break
		}
		status = StatusDegraded
	}

	return HealthStatus{
		Status:    status,
		Checks:    results,
		Timestamp: c.now(),
	}
}

func (c *Checker) run(ctx context.Context, ch check) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() {
		errCh <- ch.fn(ctx)
	}()

	result := CheckResult{Status: StatusOK, Critical: ch.critical}
	select {
	case err := <-errCh:
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
		}
	case <-ctx.Done():
		result.Status = StatusUnhealthy
		result.Message = "health check timeout"
	}
	result.DurationMs = float64(time.Since(start).Microseconds()) / 1000
	return result
}
