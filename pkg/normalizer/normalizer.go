package normalizer

import (
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"miyabi-hq/statusproxy/pkg/status"
)

// ClassifyError reports a response the normalizer cannot turn into a status
// document. The prober treats it as a failure of that candidate path.
type ClassifyError struct {
	// Kind is the classification of the rejected body
	Kind Kind

	// Reason is a short human readable explanation
	Reason string

	// Cause is the underlying parse error, if any
	Cause error
}

// Error implements the error interface.
func (e *ClassifyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
	}
	return e.Reason
}

// Unwrap returns the underlying error for error chain support.
func (e *ClassifyError) Unwrap() error {
	return e.Cause
}

// Result is a status document ready to be cached.
type Result struct {
	// Body is the document as it will be served
	Body status.Raw

	// Kind is the classification of the gateway response
	Kind Kind

	// Synthetic is true when Body was built by the proxy
	Synthetic bool
}

// Config configures a Normalizer.
type Config struct {
	// Hostname is reported in synthesized documents (status.DefaultHost if empty)
	Hostname string

	// Now overrides the clock, for tests
	Now func() time.Time
}

// Normalizer turns gateway responses into status documents.
// It is immutable and safe for concurrent use.
type Normalizer struct {
	host string
	now  func() time.Time
}

// New creates a Normalizer.
func New(cfg Config) *Normalizer {
	host := strings.TrimSpace(cfg.Hostname)
	if host == "" {
		host = status.DefaultHost
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Normalizer{host: host, now: now}
}

// Hostname returns the host reported in synthesized documents.
func (n *Normalizer) Hostname() string {
	return n.host
}

// Normalize classifies a response from path and returns the document to
// cache. JSON bodies are passed through byte for byte, minus a leading byte
// order mark; HTML dashboards
// produce a synthesized document. Everything else is a *ClassifyError.
func (n *Normalizer) Normalize(path, contentType string, body []byte) (*Result, error) {
	kind := Classify(contentType, body)

	switch kind {
	case KindEmpty:
		return nil, &ClassifyError{Kind: kind, Reason: "empty response"}

	case KindJSON:
		body = stripBOM(body)
		var probe json.RawMessage
		if err := json.Unmarshal(body, &probe); err != nil {
			return nil, &ClassifyError{Kind: kind, Reason: "invalid JSON", Cause: err}
		}
		out := make(status.Raw, len(body))
		copy(out, body)
		return &Result{Body: out, Kind: kind}, nil

	case KindHTML:
		if title := htmlTitle(body); title != "" {
			slog.Debug("gateway served HTML dashboard", "path", path, "title", title)
		}
		raw, err := status.Synthesize(n.host, path, n.now()).Marshal()
		if err != nil {
			return nil, fmt.Errorf("failed to synthesize status document: %w", err)
		}
		return &Result{Body: raw, Kind: kind, Synthetic: true}, nil

	default:
		ct := contentType
		if ct == "" {
			ct = "none"
		}
		return nil, &ClassifyError{
			Kind:   kind,
			Reason: fmt.Sprintf("unrecognized response (content-type: %s)", ct),
		}
	}
}

var titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// htmlTitle extracts the page title for logging.
func htmlTitle(body []byte) string {
	m := titlePattern.FindSubmatch(body)
	if m == nil {
		return ""
	}
	title := strings.Join(strings.Fields(html.UnescapeString(string(m[1]))), " ")
	if len(title) > 120 {
		title = title[:120]
	}
	return title
}
