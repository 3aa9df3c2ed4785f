package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"miyabi-hq/statusproxy/pkg/telemetry/tracing"
)

// AcceptHeader asks for JSON first and accepts an HTML dashboard as a fallback.
const AcceptHeader = "application/json, text/html;q=0.9, */*;q=0.1"

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes int64 = 1 << 20

// Config configures a gateway client.
type Config struct {
	// BaseURL is the gateway root, e.g. http://127.0.0.1:18789
	BaseURL string

	// Token is sent as a bearer token when non-empty
	Token string

	// UserAgent identifies the proxy to the gateway
	UserAgent string

	// MaxBodyBytes limits the size of a response body (0 means DefaultMaxBodyBytes)
	MaxBodyBytes int64

	// MaxIdleConns and IdleConnTimeout tune the connection pool
	MaxIdleConns    int
	IdleConnTimeout time.Duration
}

// Response is a fully read gateway response.
type Response struct {
	Path        string
	StatusCode  int
	ContentType string
	Body        []byte
	Latency     time.Duration
}

// Client issues single GET requests against the gateway. It never retries;
// trying the next candidate path is the caller's business.
type Client struct {
	config Config
	base   *url.URL
	client *http.Client
}

// New creates a gateway client with a pooled transport.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gateway URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported gateway scheme %q", base.Scheme)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("gateway URL %q has no host", cfg.BaseURL)
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 4
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}

	return &Client{
		config: cfg,
		base:   base,
		// No client-level timeout: every request carries its own deadline.
		client: &http.Client{Transport: transport},
	}, nil
}

// BaseURL returns the gateway root the client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// URL resolves a candidate path against the gateway root.
func (c *Client) URL(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid candidate path %q: %w", path, err)
	}
	u := *c.base
	u.Path = strings.TrimSuffix(c.base.Path, "/") + "/" + strings.TrimPrefix(ref.Path, "/")
	u.RawPath = ""
	u.RawQuery = ref.RawQuery
	return u.String(), nil
}

// Get requests path and reads the whole body within timeout. Non-2xx
// responses are returned as *StatusError. When ctx itself is canceled the
// context error is returned unchanged.
func (c *Client) Get(ctx context.Context, path string, timeout time.Duration) (*Response, error) {
	target, err := c.URL(path)
	if err != nil {
		return nil, err
	}

	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", AcceptHeader)
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	tracing.Inject(ctx, req.Header)

	slog.Debug("requesting gateway path", "url", target)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.classify(ctx, reqCtx, path, timeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Path: path, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes+1))
	if err != nil {
		if ctx.Err() == nil && reqCtx.Err() != nil {
			return nil, &TimeoutError{Path: path, Timeout: timeout}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ReadError{Path: path, Cause: err}
	}
	if int64(len(body)) > c.config.MaxBodyBytes {
		return nil, &ReadError{Path: path, Limit: c.config.MaxBodyBytes}
	}

	return &Response{
		Path:        path,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Latency:     time.Since(start),
	}, nil
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}

func (c *Client) classify(parent, reqCtx context.Context, path string, timeout time.Duration, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if reqCtx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Path: path, Timeout: timeout}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Path: path, Timeout: timeout}
	}
	return &ConnectionError{Path: path, Cause: unwrapURLError(err)}
}

// unwrapURLError drops the *url.Error wrapper, which repeats the method and URL.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
