package cache

import (
	"sync"
	"testing"
	"time"

	"miyabi-hq/statusproxy/pkg/status"
)

func TestNewMemory_Placeholder(t *testing.T) {
	m := NewMemory()

	snap := m.Load()
	if snap == nil {
		t.Fatal("Load() returned nil")
	}
	if snap.Source != SourcePlaceholder || snap.Ready() {
		t.Errorf("initial snapshot = %+v", snap)
	}
	if string(snap.Body) != string(status.Placeholder()) {
		t.Errorf("Body = %s", snap.Body)
	}
	if m.LastFailure() != nil {
		t.Error("LastFailure() should be nil on a new store")
	}
}

func TestMemory_Commit(t *testing.T) {
	tests := []struct {
		name        string
		generations []uint64
		wantStored  []bool
		wantFinal   uint64
	}{
		{"in order", []uint64{1, 2, 3}, []bool{true, true, true}, 3},
		{"older after newer", []uint64{2, 1}, []bool{true, false}, 2},
		{"same generation twice", []uint64{4, 4}, []bool{true, false}, 4},
		{"generation zero", []uint64{0}, []bool{false}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory()
			for i, gen := range tt.generations {
				got := m.Commit(&Snapshot{
					Body:       status.Raw(`{"n":1}`),
					Source:     SourceUpstream,
					Generation: gen,
				})
				if got != tt.wantStored[i] {
					t.Errorf("Commit(gen %d) = %v, want %v", gen, got, tt.wantStored[i])
				}
			}
			if got := m.Load().Generation; got != tt.wantFinal {
				t.Errorf("final generation = %d, want %d", got, tt.wantFinal)
			}
		})
	}
}

func TestMemory_CommitCopiesBody(t *testing.T) {
	m := NewMemory()
	body := status.Raw(`{"agents":1}`)
	m.Commit(&Snapshot{Body: body, Source: SourceUpstream, Generation: 1})

	body[2] = 'X'
	if got := string(m.Load().Body); got != `{"agents":1}` {
		t.Errorf("stored body changed with caller's slice: %s", got)
	}
}

func TestMemory_RecordFailure(t *testing.T) {
	m := NewMemory()
	now := time.Now()

	if !m.RecordFailure(&Failure{Generation: 2, At: now, Message: "second", Details: []string{"/: refused"}}) {
		t.Fatal("first failure not recorded")
	}
	if m.RecordFailure(&Failure{Generation: 1, At: now, Message: "first"}) {
		t.Error("older failure replaced newer one")
	}

	f := m.LastFailure()
	if f.Message != "second" || len(f.Details) != 1 {
		t.Errorf("LastFailure() = %+v", f)
	}

	// a failure never touches the served snapshot
	if m.Load().Source != SourcePlaceholder {
		t.Error("failure changed the snapshot")
	}
}

func TestMemory_ConcurrentCommit(t *testing.T) {
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(gen uint64) {
			defer wg.Done()
			m.Commit(&Snapshot{Body: status.Raw(`{}`), Source: SourceUpstream, Generation: gen})
			_ = m.Load()
		}(uint64(i))
	}
	wg.Wait()

	if got := m.Load().Generation; got != 50 {
		t.Errorf("final generation = %d, want 50", got)
	}
}
