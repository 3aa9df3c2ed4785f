package logging

import (
	"log/slog"
	"regexp"
	"strings"

	"miyabi-hq/statusproxy/pkg/config"
)

// Redactor masks credentials in log attributes.
//
// Values under sensitive keys are masked entirely (keeping a short prefix).
// Every other string value is scanned with the configured patterns.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternBearerToken = "bearer_token"
	PatternQueryToken  = "query_token"
	PatternBasicAuth   = "basic_auth"
	PatternPassword    = "password"
)

var defaultPatterns = []struct {
	name        string
	regex       string
	replacement string
}{
	{PatternBearerToken, `(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
	{PatternQueryToken, `(?i)([?&](?:token|access_token|api_key)=)[^&\s"]+`, "${1}***"},
	{PatternBasicAuth, `(://[^:/\s]+:)[^@/\s]+@`, "${1}***@"},
	{PatternPassword, `(?i)(password|passwd|pwd)[:=]\s*[^\s]+`, "$1: ***"},
}

var sensitiveKeys = []string{
	"password", "passwd", "secret", "token", "api_key", "apikey", "authorization",
}

// NewRedactor creates a Redactor with the built-in patterns followed by
// custom ones. Custom patterns that fail to compile are skipped; config
// validation rejects them before they get here.
func NewRedactor(custom []config.RedactPattern) *Redactor {
	r := &Redactor{}
	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}
	for _, p := range custom {
		re, err := regexp.Compile(p.Pattern)
		if err != nil || p.Pattern == "" {
			continue
		}
		replacement := p.Replacement
		if replacement == "" {
			replacement = "***"
		}
		r.patterns = append(r.patterns, &redactPattern{name: p.Name, regex: re, replacement: replacement})
	}
	return r
}

// RedactString applies every pattern to value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if isSensitiveKey(a.Key) {
			return slog.String(a.Key, mask(s))
		}
		if redacted := r.RedactString(s); redacted != s {
			return slog.String(a.Key, redacted)
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			msg := err.Error()
			if redacted := r.RedactString(msg); redacted != msg {
				return slog.String(a.Key, redacted)
			}
		}
	}
	return a
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// mask keeps the first four characters of long values.
func mask(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 8 {
		return "***"
	}
	return v[:4] + "***"
}
