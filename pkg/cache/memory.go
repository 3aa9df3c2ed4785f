package cache

import (
	"sync/atomic"
)

// Memory implements Store in process memory.
type Memory struct {
	current atomic.Pointer[Snapshot]
	failure atomic.Pointer[Failure]
}

// NewMemory creates a store holding the placeholder snapshot.
func NewMemory() *Memory {
	m := &Memory{}
	m.current.Store(PlaceholderSnapshot())
	return m
}

// Load returns the current snapshot.
func (m *Memory) Load() *Snapshot {
	return m.current.Load()
}

// Commit stores a copy of snap unless a snapshot of the same or a later
// generation is already present.
func (m *Memory) Commit(snap *Snapshot) bool {
	if snap == nil {
		return false
	}
	next := *snap
	next.Body = append(next.Body[:0:0], snap.Body...)

	for {
		cur := m.current.Load()
		if next.Generation <= cur.Generation {
			return false
		}
		if m.current.CompareAndSwap(cur, &next) {
			return true
		}
	}
}

// RecordFailure stores a copy of f unless a failure of the same or a later
// generation is already present.
func (m *Memory) RecordFailure(f *Failure) bool {
	if f == nil {
		return false
	}
	next := *f
	next.Details = append([]string(nil), f.Details...)

	for {
		cur := m.failure.Load()
		if cur != nil && next.Generation <= cur.Generation {
			return false
		}
		if m.failure.CompareAndSwap(cur, &next) {
			return true
		}
	}
}

// LastFailure returns the newest recorded failure.
func (m *Memory) LastFailure() *Failure {
	return m.failure.Load()
}
