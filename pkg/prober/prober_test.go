package prober

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"miyabi-hq/statusproxy/pkg/gateway"
	"miyabi-hq/statusproxy/pkg/normalizer"
	"miyabi-hq/statusproxy/pkg/telemetry/logging"
	"miyabi-hq/statusproxy/pkg/telemetry/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var fixedNow = time.Date(2026, 3, 1, 3, 4, 5, 0, time.UTC)

var testPaths = []string{"/status", "/", "/api/status", "/api/health", "/health", "/api/v1/status"}

// route describes how the fake gateway answers one path.
type route struct {
	status      int
	contentType string
	body        string
	delay       time.Duration
}

func newGateway(t *testing.T, routes map[string]route) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rt, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if rt.delay > 0 {
			select {
			case <-time.After(rt.delay):
			case <-r.Context().Done():
				return
			}
		}
		if rt.contentType != "" {
			w.Header().Set("Content-Type", rt.contentType)
		}
		if rt.status == 0 {
			rt.status = http.StatusOK
		}
		w.WriteHeader(rt.status)
		_, _ = w.Write([]byte(rt.body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newProber(t *testing.T, baseURL string, paths []string, timeout time.Duration, opts ...Option) *Prober {
	t.Helper()
	client, err := gateway.New(gateway.Config{BaseURL: baseURL, UserAgent: "statusproxy/test"})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(client.CloseIdleConnections)

	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	p, err := New(Config{
		Fetcher:    client,
		Normalizer: normalizer.New(normalizer.Config{Hostname: "mini", Now: func() time.Time { return fixedNow }}),
		Paths:      paths,
		Timeout:    timeout,
	}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

// closedAddr returns an address nothing listens on.
func closedAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return "http://" + addr
}

type attempt struct {
	path    string
	outcome string
}

type fakeRecorder struct {
	mu       sync.Mutex
	attempts []attempt
}

func (r *fakeRecorder) RecordProbeAttempt(path, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt{path, outcome})
}

func TestProbe_JSONPassThrough(t *testing.T) {
	const body = `{"agents":3,"sessions":5,"gateway":"🟢"}`
	gw := newGateway(t, map[string]route{
		"/status": {contentType: "application/json", body: body},
	})
	p := newProber(t, gw.URL, testPaths, time.Second)

	res, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if string(res.Body) != body {
		t.Errorf("Body = %s, want %s", res.Body, body)
	}
	if res.Path != "/status" || res.Synthetic || res.Kind != normalizer.KindJSON {
		t.Errorf("result = %+v", res)
	}
	if len(res.Failures) != 0 {
		t.Errorf("Failures = %v", res.Failures)
	}
}

func TestProbe_FallsBackToHTML(t *testing.T) {
	gw := newGateway(t, map[string]route{
		"/": {contentType: "text/html; charset=utf-8", body: "<!DOCTYPE html><html><title>Gateway</title></html>"},
	})
	rec := &fakeRecorder{}
	p := newProber(t, gw.URL, testPaths, time.Second, WithRecorder(rec))

	res, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if !res.Synthetic || res.Path != "/" {
		t.Fatalf("result = %+v", res)
	}

	var doc map[string]any
	if err := json.Unmarshal(res.Body, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["agents"] != float64(0) || doc["sessions"] != float64(0) || doc["_note"] == nil {
		t.Errorf("synthesized document = %v", doc)
	}
	if doc["host"] != "mini" || doc["version"] != "proxy-synthetic" {
		t.Errorf("host/version = %v/%v", doc["host"], doc["version"])
	}
	if doc["updatedAt"] != "2026-03-01T03:04:05.000Z" {
		t.Errorf("updatedAt = %v", doc["updatedAt"])
	}

	if len(res.Failures) != 1 || res.Failures[0].Path != "/status" || res.Failures[0].Kind != FailureStatus {
		t.Errorf("Failures = %+v", res.Failures)
	}
	want := []attempt{{"/status", "status"}, {"/", OutcomeOK}}
	if !reflect.DeepEqual(rec.attempts, want) {
		t.Errorf("recorded attempts = %v, want %v", rec.attempts, want)
	}
}

func TestProbe_FirstMatchWins(t *testing.T) {
	gw := newGateway(t, map[string]route{
		"/status":     {contentType: "text/html", body: "<html></html>"},
		"/api/status": {contentType: "application/json", body: `{"agents":1}`},
	})
	p := newProber(t, gw.URL, []string{"/status", "/api/status"}, time.Second)

	res, err := p.Probe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Path != "/status" || !res.Synthetic {
		t.Errorf("expected the earlier HTML candidate to win, got %+v", res)
	}
}

func TestProbe_RejectsUninterpretableBodies(t *testing.T) {
	gw := newGateway(t, map[string]route{
		"/status":     {contentType: "application/json", body: `{"agents":`},
		"/":           {contentType: "text/plain", body: "OK"},
		"/api/status": {contentType: "application/json", body: "   \n"},
		"/health":     {status: http.StatusServiceUnavailable, body: "down"},
	})
	p := newProber(t, gw.URL, []string{"/status", "/", "/api/status", "/health"}, time.Second)

	_, err := p.Probe(context.Background())
	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("expected *ProbeError, got %v", err)
	}

	gotKinds := make([]FailureKind, len(probeErr.Failures))
	for i, f := range probeErr.Failures {
		gotKinds[i] = f.Kind
	}
	wantKinds := []FailureKind{FailureInvalidJSON, FailureUnrecognized, FailureEmpty, FailureStatus}
	if !reflect.DeepEqual(gotKinds, wantKinds) {
		t.Errorf("kinds = %v, want %v", gotKinds, wantKinds)
	}

	var statusErr *gateway.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("errors.As through ProbeError failed: %v", statusErr)
	}
}

func TestProbe_AllConnectionRefused(t *testing.T) {
	p := newProber(t, closedAddr(t), testPaths, time.Second)

	_, err := p.Probe(context.Background())
	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("expected *ProbeError, got %v", err)
	}

	details := probeErr.Details()
	if len(details) != len(testPaths) {
		t.Fatalf("details = %d, want %d", len(details), len(testPaths))
	}
	for i, f := range probeErr.Failures {
		if f.Path != testPaths[i] {
			t.Errorf("failure %d path = %q, want %q", i, f.Path, testPaths[i])
		}
		if f.Kind != FailureConnection {
			t.Errorf("failure %d kind = %q", i, f.Kind)
		}
		if details[i] != f.Path+": "+f.Reason {
			t.Errorf("detail %d = %q", i, details[i])
		}
	}
}

func TestProbe_TimeoutBound(t *testing.T) {
	gw := newGateway(t, map[string]route{
		"/status": {contentType: "application/json", body: `{}`, delay: 5 * time.Second},
		"/":       {contentType: "application/json", body: `{"ok":true}`},
	})
	timeout := 100 * time.Millisecond
	p := newProber(t, gw.URL, []string{"/status", "/"}, timeout)

	start := time.Now()
	res, err := p.Probe(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if res.Path != "/" {
		t.Errorf("Path = %q, want /", res.Path)
	}
	if res.Failures[0].Kind != FailureTimeout {
		t.Errorf("first failure = %+v", res.Failures[0])
	}
	if elapsed > timeout+time.Second {
		t.Errorf("probe took %v, want about %v", elapsed, timeout)
	}
}

func TestProbe_ContextCanceled(t *testing.T) {
	gw := newGateway(t, map[string]route{
		"/status": {body: `{}`, delay: 5 * time.Second},
	})
	p := newProber(t, gw.URL, []string{"/status", "/", "/health"}, 10*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Probe(ctx)
	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("expected *ProbeError, got %v", err)
	}
	if len(probeErr.Failures) != 3 {
		t.Fatalf("failures = %v", probeErr.Failures)
	}
	for _, f := range probeErr.Failures[1:] {
		if f.Kind != FailureTimeout && f.Kind != FailureCanceled {
			t.Errorf("remaining path %s kind = %s", f.Path, f.Kind)
		}
	}
}

type staticFetcher struct {
	resp *gateway.Response
}

func (f staticFetcher) Get(_ context.Context, path string, _ time.Duration) (*gateway.Response, error) {
	r := *f.resp
	r.Path = path
	return &r, nil
}

func TestReconfigure(t *testing.T) {
	n := normalizer.New(normalizer.Config{})
	p, err := New(Config{
		Fetcher:    staticFetcher{&gateway.Response{ContentType: "application/json", Body: []byte(`{"v":1}`)}},
		Normalizer: n,
		Paths:      []string{"/status"},
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}

	err = p.Reconfigure(Config{
		Fetcher:    staticFetcher{&gateway.Response{ContentType: "application/json", Body: []byte(`{"v":2}`)}},
		Normalizer: n,
		Paths:      []string{"/api/v1/status"},
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("Reconfigure() error = %v", err)
	}

	res, err := p.Probe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Body) != `{"v":2}` || res.Path != "/api/v1/status" {
		t.Errorf("result after reconfigure = %+v", res)
	}
	if !reflect.DeepEqual(p.Paths(), []string{"/api/v1/status"}) {
		t.Errorf("Paths() = %v", p.Paths())
	}

	if err := p.Reconfigure(Config{Fetcher: nil, Normalizer: n, Paths: []string{"/"}, Timeout: time.Second}); err == nil {
		t.Error("expected error for missing fetcher")
	}
	if p.Paths()[0] != "/api/v1/status" {
		t.Error("invalid reconfigure replaced the configuration")
	}
}

func TestNew_Validation(t *testing.T) {
	n := normalizer.New(normalizer.Config{})
	f := staticFetcher{&gateway.Response{}}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no fetcher", Config{Normalizer: n, Paths: []string{"/"}, Timeout: time.Second}},
		{"no normalizer", Config{Fetcher: f, Paths: []string{"/"}, Timeout: time.Second}},
		{"no paths", Config{Fetcher: f, Normalizer: n, Timeout: time.Second}},
		{"no timeout", Config{Fetcher: f, Normalizer: n, Paths: []string{"/"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestProbe_Spans(t *testing.T) {
	gw := newGateway(t, map[string]route{
		"/": {contentType: "application/json", body: `{}`},
	})
	recorder := tracetest.NewSpanRecorder()
	tracer := tracing.NewWithProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	p := newProber(t, gw.URL, []string{"/status", "/"}, time.Second, WithTracer(tracer))

	if _, err := p.Probe(context.Background()); err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	want := []string{tracing.SpanAttempt, tracing.SpanAttempt, tracing.SpanProbe}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("spans = %v, want %v", names, want)
	}
}

func TestProbeError(t *testing.T) {
	cause := &gateway.StatusError{Path: "/status", StatusCode: 404}
	e := &ProbeError{Failures: []PathFailure{
		{Path: "/status", Kind: FailureStatus, Reason: cause.Error(), Err: cause},
		{Path: "/", Kind: FailureEmpty, Reason: "empty response"},
	}}

	if got := e.Error(); got != "all 2 candidate paths failed (last /: empty response)" {
		t.Errorf("Error() = %q", got)
	}
	if got := e.Summary(); got != "/status: gateway returned status 404; /: empty response" {
		t.Errorf("Summary() = %q", got)
	}
	if len(e.Unwrap()) != 1 {
		t.Errorf("Unwrap() = %v", e.Unwrap())
	}
	if (&ProbeError{}).Error() != "no candidate paths configured" {
		t.Error("empty ProbeError message")
	}
}
