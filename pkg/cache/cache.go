package cache

import (
	"time"

	"miyabi-hq/statusproxy/pkg/status"
)

// Source describes where the cached document came from.
type Source string

const (
	// SourcePlaceholder is the document served before any refresh succeeded.
	SourcePlaceholder Source = "placeholder"
	// SourceUpstream is a JSON document passed through from the gateway.
	SourceUpstream Source = "upstream"
	// SourceSynthetic is a document synthesized from an HTML dashboard.
	SourceSynthetic Source = "synthetic"
)

// Sources lists every Source value.
func Sources() []Source {
	return []Source{SourcePlaceholder, SourceUpstream, SourceSynthetic}
}

// Snapshot is one immutable cache entry. Callers must not modify Body.
type Snapshot struct {
	// Body is served verbatim
	Body status.Raw

	Source Source

	// Path is the candidate path that produced Body (empty for the placeholder)
	Path string

	// UpdatedAt is when the snapshot was committed (zero for the placeholder)
	UpdatedAt time.Time

	// Generation orders commits; the placeholder is generation 0
	Generation uint64
}

// Ready reports whether the snapshot came from a completed refresh.
func (s *Snapshot) Ready() bool {
	return s != nil && s.Source != SourcePlaceholder
}

// Failure records a refresh in which every candidate path failed.
type Failure struct {
	Generation uint64
	At         time.Time

	// Message is the one-line error
	Message string

	// Details has one "<path>: <reason>" entry per candidate path
	Details []string
}

// Store is the single-slot document cache.
type Store interface {
	// Load returns the current snapshot. It never returns nil.
	Load() *Snapshot

	// Commit replaces the current snapshot if snap.Generation is newer.
	// It reports whether the snapshot was stored.
	Commit(snap *Snapshot) bool

	// RecordFailure remembers a failed refresh if it is the newest one seen.
	RecordFailure(f *Failure) bool

	// LastFailure returns the newest recorded failure, or nil.
	LastFailure() *Failure
}

// PlaceholderSnapshot returns the snapshot a new store starts with.
func PlaceholderSnapshot() *Snapshot {
	return &Snapshot{
		Body:   status.Placeholder(),
		Source: SourcePlaceholder,
	}
}
