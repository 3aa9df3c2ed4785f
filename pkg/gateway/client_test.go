package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, baseURL string, mutate func(*Config)) *Client {
	t.Helper()
	cfg := Config{BaseURL: baseURL, UserAgent: "statusproxy/test"}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(c.CloseIdleConnections)
	return c
}

func TestNew_InvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"bad scheme", "ftp://127.0.0.1:21"},
		{"no host", "http://"},
		{"garbage", "://nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(Config{BaseURL: tt.url}); err == nil {
				t.Errorf("New(%q) expected error", tt.url)
			}
		})
	}
}

func TestClient_URL(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"http://127.0.0.1:18789", "/status", "http://127.0.0.1:18789/status"},
		{"http://127.0.0.1:18789", "/", "http://127.0.0.1:18789/"},
		{"http://127.0.0.1:18789/", "/api/status", "http://127.0.0.1:18789/api/status"},
		{"http://gw.local/openclaw", "/health", "http://gw.local/openclaw/health"},
		{"http://gw.local", "/api/v1/status?verbose=1", "http://gw.local/api/v1/status?verbose=1"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c := newTestClient(t, tt.base, nil)
			got, err := c.URL(tt.path)
			if err != nil {
				t.Fatalf("URL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("URL(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestClient_Get_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *Config) { cfg.Token = "s3cret" })

	resp, err := c.Get(context.Background(), "/status", time.Second)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if accept := got.Get("Accept"); !strings.Contains(accept, "application/json") || !strings.Contains(accept, "text/html") {
		t.Errorf("Accept = %q", accept)
	}
	if ua := got.Get("User-Agent"); ua != "statusproxy/test" {
		t.Errorf("User-Agent = %q", ua)
	}
	if auth := got.Get("Authorization"); auth != "Bearer s3cret" {
		t.Errorf("Authorization = %q", auth)
	}
	if resp.ContentType != "application/json" || string(resp.Body) != `{"ok":true}` {
		t.Errorf("response = %q %q", resp.ContentType, resp.Body)
	}
	if resp.Path != "/status" || resp.StatusCode != http.StatusOK {
		t.Errorf("Path/StatusCode = %q/%d", resp.Path, resp.StatusCode)
	}
}

func TestClient_Get_NoTokenNoAuthorization(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	if _, err := c.Get(context.Background(), "/", time.Second); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if auth != "" {
		t.Errorf("Authorization = %q, want empty", auth)
	}
}

func TestClient_Get_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.Get(context.Background(), "/status", time.Second)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound || statusErr.Path != "/status" {
		t.Errorf("StatusError = %+v", statusErr)
	}
	if err.Error() != "gateway returned status 404" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestClient_Get_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL, nil)

	start := time.Now()
	_, err := c.Get(context.Background(), "/status", 50*time.Millisecond)
	elapsed := time.Since(start)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want *TimeoutError", err)
	}
	if timeoutErr.Timeout != 50*time.Millisecond {
		t.Errorf("Timeout = %v", timeoutErr.Timeout)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Get() took %v, want about 50ms", elapsed)
	}
}

func TestClient_Get_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := newTestClient(t, "http://"+addr, nil)
	_, err = c.Get(context.Background(), "/status", time.Second)

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("error = %v, want *ConnectionError", err)
	}
	if !strings.HasPrefix(err.Error(), "connection failed:") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestClient_Get_ParentCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Get(ctx, "/status", 5*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestClient_Get_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 64)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *Config) { cfg.MaxBodyBytes = 16 })
	_, err := c.Get(context.Background(), "/", time.Second)

	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("error = %v, want *ReadError", err)
	}
	if readErr.Limit != 16 {
		t.Errorf("Limit = %d", readErr.Limit)
	}
}
