package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestAttemptReporter(t *testing.T) {
	buf := &bytes.Buffer{}
	rep := NewAttemptReporter(buf)

	rep.Start("http://127.0.0.1:18789", 3)
	rep.RecordProbeAttempt("/status", "connection", 3*time.Millisecond)
	rep.RecordProbeAttempt("/", "ok", 12*time.Millisecond)
	rep.Finish()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "http://127.0.0.1:18789") || !strings.Contains(lines[0], "3 candidate paths") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "[1/3] ✗ /status") || !strings.Contains(lines[1], "connection") {
		t.Errorf("first attempt = %q", lines[1])
	}
	if !strings.Contains(lines[2], "[2/3] ✓ /") || !strings.Contains(lines[2], "12ms") {
		t.Errorf("second attempt = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "Done in ") {
		t.Errorf("footer = %q", lines[3])
	}
}

func TestAttemptReporter_DefaultsToStderr(t *testing.T) {
	rep := NewAttemptReporter(nil)
	if rep.writer == nil {
		t.Error("writer should default to stderr")
	}
}
