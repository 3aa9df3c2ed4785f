package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// AttemptReporter prints one line per probed candidate path. It satisfies
// the prober's Recorder interface so a one-shot probe can show its progress
// on stderr while the result goes to stdout.
type AttemptReporter struct {
	mu      sync.Mutex
	writer  io.Writer
	total   int
	current int
	started time.Time
}

// NewAttemptReporter creates a reporter that writes to w.
// If w is nil, it defaults to os.Stderr.
func NewAttemptReporter(w io.Writer) *AttemptReporter {
	if w == nil {
		w = os.Stderr
	}
	return &AttemptReporter{writer: w}
}

// Start announces a probe over total candidate paths.
func (r *AttemptReporter) Start(target string, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = total
	r.current = 0
	r.started = time.Now()
	fmt.Fprintf(r.writer, "Probing %s (%d candidate paths)\n", target, total)
}

// RecordProbeAttempt prints the outcome of one candidate path.
func (r *AttemptReporter) RecordProbeAttempt(path, outcome string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current++
	mark := "✗"
	if outcome == "ok" {
		mark = "✓"
	}
	fmt.Fprintf(r.writer, "  [%d/%d] %s %-20s %-14s %s\n",
		r.current, r.total, mark, path, outcome, duration.Round(time.Millisecond))
}

// Finish prints the elapsed time of the whole probe.
func (r *AttemptReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.writer, "Done in %s\n", time.Since(r.started).Round(time.Millisecond))
}
