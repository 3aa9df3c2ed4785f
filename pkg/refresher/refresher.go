package refresher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"miyabi-hq/statusproxy/pkg/cache"
	"miyabi-hq/statusproxy/pkg/config"
	"miyabi-hq/statusproxy/pkg/prober"
	"miyabi-hq/statusproxy/pkg/telemetry/logging"
	"miyabi-hq/statusproxy/pkg/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

// Mode selects how the cache is refreshed.
type Mode string

const (
	ModeBackground Mode = config.RefreshModeBackground
	ModeOnDemand   Mode = config.RefreshModeOnDemand
)

// Refresh triggers, recorded in logs and spans.
const (
	TriggerStartup  = "startup"
	TriggerSchedule = "schedule"
	TriggerRequest  = "request"
)

// Refresh outcomes, used as metric labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

const refreshKey = "refresh"

// Prober fetches and normalizes the gateway status. *prober.Prober
// implements it.
type Prober interface {
	Probe(ctx context.Context) (*prober.Result, error)
}

// Recorder receives refresh metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordRefresh(outcome string, duration time.Duration)
	SetLastSuccess(t time.Time)
	SetCacheSource(source string)
}

// Config controls scheduling.
type Config struct {
	Mode Mode

	// Interval is the background refresh period
	Interval time.Duration

	// RequestTimeout bounds how long an on-demand request waits. 0 waits for
	// the refresh to finish.
	RequestTimeout time.Duration

	// MaxAge lets on-demand requests reuse a document younger than this
	MaxAge time.Duration
}

// FromConfig maps the refresh section of the configuration file.
func FromConfig(cfg *config.Config) Config {
	return Config{
		Mode:           Mode(cfg.Refresh.Mode),
		Interval:       cfg.Refresh.Interval,
		RequestTimeout: cfg.WaitTimeout(),
		MaxAge:         cfg.Refresh.MaxAge,
	}
}

// Refresher runs probes and commits their results to a cache.Store.
type Refresher struct {
	cfg      Config
	prober   Prober
	store    cache.Store
	recorder Recorder
	tracer   *tracing.Tracer
	logger   *slog.Logger
	now      func() time.Time

	generation atomic.Uint64
	group      singleflight.Group

	// lifetime is canceled by Stop and ends any refresh still running
	lifetime context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	wg      sync.WaitGroup
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Refresher) { r.recorder = rec }
}

// WithTracer sets the tracer used for refresh spans.
func WithTracer(t *tracing.Tracer) Option {
	return func(r *Refresher) { r.tracer = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Refresher) { r.logger = l }
}

// WithClock replaces time.Now. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(r *Refresher) { r.now = now }
}

// New creates a refresher. It does not refresh until Start or Current is
// called.
func New(cfg Config, p Prober, store cache.Store, opts ...Option) (*Refresher, error) {
	if p == nil {
		return nil, errors.New("refresher requires a prober")
	}
	if store == nil {
		return nil, errors.New("refresher requires a cache store")
	}
	switch cfg.Mode {
	case ModeBackground:
		if cfg.Interval < time.Second {
			return nil, fmt.Errorf("refresh interval must be at least 1s, got %s", cfg.Interval)
		}
	case ModeOnDemand:
	default:
		return nil, fmt.Errorf("unknown refresh mode %q", cfg.Mode)
	}

	r := &Refresher{
		cfg:    cfg,
		prober: p,
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = tracing.Noop()
	}
	r.logger = r.logger.With("component", "refresher")
	r.lifetime, r.cancel = context.WithCancel(context.Background())
	return r, nil
}

// Mode returns the configured refresh mode.
func (r *Refresher) Mode() Mode {
	return r.cfg.Mode
}

// Refresh runs one refresh, or joins the one already running, and returns
// the snapshot current afterwards. The refresh itself is not canceled with
// ctx; only the wait is. On failure the error is a *prober.ProbeError and the
// returned snapshot is whatever was cached before.
func (r *Refresher) Refresh(ctx context.Context, trigger string) (*cache.Snapshot, error) {
	ch := r.group.DoChan(refreshKey, func() (_ interface{}, err error) {
		defer r.recoverRefresh(ctx, &err)
		return nil, r.run(ctx, trigger)
	})

	select {
	case res := <-ch:
		return r.store.Load(), res.Err
	case <-ctx.Done():
		return r.store.Load(), ctx.Err()
	}
}

func (r *Refresher) run(parent context.Context, trigger string) error {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	defer cancel()
	stop := context.AfterFunc(r.lifetime, cancel)
	defer stop()

	gen := r.generation.Add(1)
	id := uuid.NewString()
	ctx = logging.WithRefreshID(ctx, id)

	ctx, span := r.tracer.Start(ctx, tracing.SpanRefresh)
	defer span.End()
	tracing.SetRefreshAttributes(span, id, trigger)

	start := time.Now()
	res, err := r.probe(ctx)
	elapsed := time.Since(start)
	finished := r.now()

	if err != nil {
		r.fail(ctx, gen, finished, elapsed, err)
		tracing.SetError(span, err)
		span.SetAttributes(attribute.String(tracing.AttrOutcome, OutcomeFailure))
		return err
	}

	source := cache.SourceUpstream
	if res.Synthetic {
		source = cache.SourceSynthetic
	}
	span.SetAttributes(
		attribute.String(tracing.AttrOutcome, OutcomeSuccess),
		attribute.String(tracing.AttrSource, string(source)),
		attribute.String(tracing.AttrPath, res.Path),
	)

	previous := r.store.Load()
	committed := r.store.Commit(&cache.Snapshot{
		Body:       res.Body,
		Source:     source,
		Path:       res.Path,
		UpdatedAt:  finished,
		Generation: gen,
	})
	if !committed {
		r.logger.DebugContext(ctx, "refresh superseded by a newer one", "generation", gen)
	}

	if r.recorder != nil {
		r.recorder.RecordRefresh(OutcomeSuccess, elapsed)
		if committed {
			r.recorder.SetLastSuccess(finished)
			r.recorder.SetCacheSource(string(source))
		}
	}

	attrs := []any{
		"trigger", trigger,
		"path", res.Path,
		"source", string(source),
		"skipped_paths", len(res.Failures),
		"duration_ms", elapsed.Milliseconds(),
	}
	switch {
	case r.failedSince(previous):
		r.logger.InfoContext(ctx, "gateway recovered", attrs...)
	case previous.Source != source || previous.Path != res.Path:
		r.logger.InfoContext(ctx, "status source changed", attrs...)
	default:
		r.logger.DebugContext(ctx, "refresh completed", attrs...)
	}
	return nil
}

// probe runs the prober. A panic becomes a failed refresh, so the cached
// document stays in place.
func (r *Refresher) probe(ctx context.Context) (res *prober.Result, err error) {
	defer r.recoverRefresh(ctx, &err)
	return r.prober.Probe(ctx)
}

// recoverRefresh must be deferred directly. singleflight re-panics on a
// goroutine of its own, where neither cron nor the HTTP recovery middleware
// can catch it.
func (r *Refresher) recoverRefresh(ctx context.Context, err *error) {
	v := recover()
	if v == nil {
		return
	}
	r.logger.ErrorContext(ctx, "panic during refresh",
		"error", v,
		"stack", string(debug.Stack()),
	)
	*err = fmt.Errorf("refresh panicked: %v", v)
}

func (r *Refresher) fail(ctx context.Context, gen uint64, at time.Time, elapsed time.Duration, err error) {
	failure := &cache.Failure{
		Generation: gen,
		At:         at,
		Message:    err.Error(),
	}
	var probeErr *prober.ProbeError
	if errors.As(err, &probeErr) {
		failure.Details = probeErr.Details()
	}
	r.store.RecordFailure(failure)

	if r.recorder != nil {
		r.recorder.RecordRefresh(OutcomeFailure, elapsed)
	}

	snap := r.store.Load()
	r.logger.WarnContext(ctx, "refresh failed, keeping cached document",
		"error", err,
		"details", failure.Details,
		"cached_source", string(snap.Source),
		"duration_ms", elapsed.Milliseconds(),
	)
}

// failedSince reports whether a failure newer than snap has been recorded.
func (r *Refresher) failedSince(snap *cache.Snapshot) bool {
	f := r.store.LastFailure()
	return f != nil && f.Generation > snap.Generation
}

// Current returns the snapshot to serve. In on-demand mode it first
// refreshes, unless the cached document is younger than MaxAge, waiting at
// most RequestTimeout. The error is an *UnavailableError when nothing has
// ever been cached and the last refresh failed; the placeholder snapshot is
// returned with it.
func (r *Refresher) Current(ctx context.Context) (*cache.Snapshot, error) {
	if r.cfg.Mode == ModeOnDemand && !r.fresh(r.store.Load()) {
		waitCtx := ctx
		if r.cfg.RequestTimeout > 0 {
			var cancel context.CancelFunc
			waitCtx, cancel = context.WithTimeout(ctx, r.cfg.RequestTimeout)
			defer cancel()
		}
		if _, err := r.Refresh(waitCtx, TriggerRequest); err != nil && waitCtx.Err() != nil {
			r.logger.DebugContext(ctx, "serving cached document while refresh continues", "error", err)
		}
	}

	snap := r.store.Load()
	if snap.Ready() {
		return snap, nil
	}
	if f := r.store.LastFailure(); f != nil {
		return snap, &UnavailableError{Message: f.Message, Details: f.Details, At: f.At}
	}
	return snap, nil
}

func (r *Refresher) fresh(snap *cache.Snapshot) bool {
	if r.cfg.MaxAge <= 0 || !snap.Ready() {
		return false
	}
	return r.now().Sub(snap.UpdatedAt) < r.cfg.MaxAge
}

// Ready reports whether a document has been cached. Used as a readiness
// check.
func (r *Refresher) Ready(context.Context) error {
	if !r.store.Load().Ready() {
		return errors.New("no status document cached yet")
	}
	return nil
}

// Healthy reports whether the most recent refresh succeeded.
func (r *Refresher) Healthy(context.Context) error {
	snap := r.store.Load()
	if f := r.store.LastFailure(); f != nil && f.Generation > snap.Generation {
		return fmt.Errorf("last refresh failed at %s: %s", f.At.UTC().Format(time.RFC3339), f.Message)
	}
	return nil
}
