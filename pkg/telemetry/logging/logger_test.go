package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"miyabi-hq/statusproxy/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid JSON config",
			config: Config{Level: "info", Format: "json", Redact: true},
		},
		{
			name:   "valid text config",
			config: Config{Level: "debug", Format: "text"},
		},
		{
			name:   "console is an alias for text",
			config: Config{Level: "WARN", Format: "console"},
		},
		{
			name:    "invalid log level",
			config:  Config{Level: "invalid", Format: "json"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: "info", Format: "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "warn", Format: "json", Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn record missing")
	}
}

func TestNew_ContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithRefreshID(ctx, "cycle-7")
	logger.With("component", "test").InfoContext(ctx, "served")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if rec["request_id"] != "req-123" {
		t.Errorf("request_id = %v", rec["request_id"])
	}
	if rec["refresh_id"] != "cycle-7" {
		t.Errorf("refresh_id = %v", rec["refresh_id"])
	}
	if rec["component"] != "test" {
		t.Errorf("component = %v", rec["component"])
	}
}

func TestNew_RedactsToken(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Redact: true, Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("probe",
		"gateway_token", "supersecretvalue",
		"header", "Bearer abc.def.ghi",
		"url", "http://gw:18789/status?token=abc123",
	)

	out := buf.String()
	for _, leak := range []string{"supersecretvalue", "abc.def.ghi", "abc123"} {
		if strings.Contains(out, leak) {
			t.Errorf("output leaks %q: %s", leak, out)
		}
	}
	if !strings.Contains(out, "supe***") {
		t.Errorf("sensitive key not masked with prefix: %s", out)
	}
}

func TestNew_RedactionDisabled(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "text", Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("probe", "token", "visible-token")
	if !strings.Contains(buf.String(), "visible-token") {
		t.Errorf("redaction applied while disabled: %s", buf.String())
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:  "debug",
		Format: "text",
		Redact: true,
		RedactPatterns: []config.RedactPattern{
			{Name: "host", Pattern: `internal\.lan`, Replacement: "[host]"},
		},
	}

	got := FromConfig(&cfg)
	if got.Level != "debug" || got.Format != "text" || !got.Redact || len(got.RedactPatterns) != 1 {
		t.Errorf("FromConfig() = %+v", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"fatal", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard() logger should not be enabled at error level")
	}
}
