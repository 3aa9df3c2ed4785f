package prober

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"miyabi-hq/statusproxy/pkg/gateway"
	"miyabi-hq/statusproxy/pkg/normalizer"
	"miyabi-hq/statusproxy/pkg/status"
	"miyabi-hq/statusproxy/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// OutcomeOK is the metric outcome for an accepted candidate.
const OutcomeOK = "ok"

// Fetcher performs a single GET against the gateway. *gateway.Client
// implements it.
type Fetcher interface {
	Get(ctx context.Context, path string, timeout time.Duration) (*gateway.Response, error)
}

// Recorder receives one observation per attempted path.
// *metrics.Collector implements it.
type Recorder interface {
	RecordProbeAttempt(path, outcome string, duration time.Duration)
}

// Config is the swappable part of the prober.
type Config struct {
	// Fetcher talks to the gateway
	Fetcher Fetcher

	// Normalizer turns accepted bodies into status documents
	Normalizer *normalizer.Normalizer

	// Paths are tried in order; the first interpretable one wins
	Paths []string

	// Timeout bounds each path individually
	Timeout time.Duration
}

func (c Config) validate() error {
	if c.Fetcher == nil {
		return errors.New("prober requires a fetcher")
	}
	if c.Normalizer == nil {
		return errors.New("prober requires a normalizer")
	}
	if len(c.Paths) == 0 {
		return errors.New("prober requires at least one candidate path")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid per-path timeout %s", c.Timeout)
	}
	return nil
}

// Result is the outcome of a successful probe.
type Result struct {
	// Body is the document to cache
	Body status.Raw

	// Path is the candidate that produced Body
	Path string

	// Kind is the classification of the accepted response
	Kind normalizer.Kind

	// Synthetic is true when Body was built from an HTML dashboard
	Synthetic bool

	// Latency is the duration of the accepted request
	Latency time.Duration

	// Failures lists the candidates rejected before Path
	Failures []PathFailure
}

// Prober walks the candidate paths against the gateway.
type Prober struct {
	cfg      atomic.Pointer[Config]
	recorder Recorder
	tracer   *tracing.Tracer
	logger   *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Prober) { p.recorder = r }
}

// WithTracer sets the tracer used for per-attempt spans.
func WithTracer(t *tracing.Tracer) Option {
	return func(p *Prober) { p.tracer = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Prober) { p.logger = l }
}

// New creates a prober.
func New(cfg Config, opts ...Option) (*Prober, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &Prober{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracer == nil {
		p.tracer = tracing.Noop()
	}

	cfg.Paths = append([]string(nil), cfg.Paths...)
	p.cfg.Store(&cfg)
	return p, nil
}

// Reconfigure swaps the configuration. Probes already running keep the
// configuration they started with.
func (p *Prober) Reconfigure(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	cfg.Paths = append([]string(nil), cfg.Paths...)
	p.cfg.Store(&cfg)
	return nil
}

// Paths returns the current candidate paths.
func (p *Prober) Paths() []string {
	return append([]string(nil), p.cfg.Load().Paths...)
}

// Probe tries each candidate path in order and returns the first
// interpretable result. When every path fails the error is a *ProbeError
// listing each failure in order. If ctx ends mid-probe the remaining paths
// are reported as canceled.
func (p *Prober) Probe(ctx context.Context) (*Result, error) {
	cfg := p.cfg.Load()

	ctx, span := p.tracer.Start(ctx, tracing.SpanProbe)
	defer span.End()
	span.SetAttributes(attribute.Int(tracing.AttrCandidates, len(cfg.Paths)))

	var failures []PathFailure
	for _, path := range cfg.Paths {
		if err := ctx.Err(); err != nil {
			failures = append(failures, PathFailure{Path: path, Kind: FailureCanceled, Reason: err.Error(), Err: err})
			continue
		}

		res, err := p.attempt(ctx, cfg, path)
		if err != nil {
			f := PathFailure{Path: path, Kind: classify(err), Reason: err.Error(), Err: err}
			failures = append(failures, f)
			p.logger.DebugContext(ctx, "candidate path rejected",
				"path", path,
				"kind", string(f.Kind),
				"reason", f.Reason,
			)
			continue
		}

		res.Failures = failures
		span.SetAttributes(
			attribute.String(tracing.AttrPath, path),
			attribute.Bool(tracing.AttrSynthetic, res.Synthetic),
		)
		return res, nil
	}

	probeErr := &ProbeError{Failures: failures}
	tracing.SetError(span, probeErr)
	return nil, probeErr
}

func (p *Prober) attempt(ctx context.Context, cfg *Config, path string) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, tracing.SpanAttempt)
	defer span.End()

	start := time.Now()
	res, err := p.fetch(ctx, cfg, path)
	elapsed := time.Since(start)

	outcome := OutcomeOK
	if err != nil {
		outcome = string(classify(err))
		tracing.SetError(span, err)
	}
	tracing.SetAttemptAttributes(span, path, outcome, elapsed)
	if p.recorder != nil {
		p.recorder.RecordProbeAttempt(path, outcome, elapsed)
	}

	return res, err
}

func (p *Prober) fetch(ctx context.Context, cfg *Config, path string) (*Result, error) {
	resp, err := cfg.Fetcher.Get(ctx, path, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	normalized, err := cfg.Normalizer.Normalize(path, resp.ContentType, resp.Body)
	if err != nil {
		return nil, err
	}

	return &Result{
		Body:      normalized.Body,
		Path:      path,
		Kind:      normalized.Kind,
		Synthetic: normalized.Synthetic,
		Latency:   resp.Latency,
	}, nil
}
