package recorder

import (
	"sync"

	"DrawdownSentinel/internal/model"
)

// MemoryRecorder keeps the last N cycles and the last known status per
// instrument. Nothing survives a restart.
type MemoryRecorder struct {
	mu      sync.Mutex
	size    int
	ring    []CycleRecord
	lastSeq uint64
	last    map[string]model.Status
}

// NewMemoryRecorder keeps up to size cycles.
func NewMemoryRecorder(size int) *MemoryRecorder {
	if size <= 0 {
		size = 1
	}
	return &MemoryRecorder{size: size, last: make(map[string]model.Status)}
}

func (r *MemoryRecorder) RecordCycle(b *model.Board) []model.Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	// stale cycles carry no new information
	if b.Seq <= r.lastSeq {
		return nil
	}
	r.lastSeq = b.Seq

	r.ring = append(r.ring, summarize(b))
	if len(r.ring) > r.size {
		r.ring = r.ring[len(r.ring)-r.size:]
	}

	var transitions []model.Transition
	for _, s := range b.Sheets {
		// a data gap is not a status change
		if s.Insufficient {
			continue
		}
		prev, seen := r.last[s.Symbol]
		r.last[s.Symbol] = s.Status
		if !seen || prev == s.Status {
			continue
		}
		t := model.Transition{Symbol: s.Symbol, From: prev, To: s.Status}
		if s.Drawdown != nil {
			t.Drawdown = *s.Drawdown
		}
		if s.Price != nil {
			t.Price = *s.Price
		}
		transitions = append(transitions, t)
	}
	return transitions
}

// History returns recorded cycles, oldest first.
func (r *MemoryRecorder) History() []CycleRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CycleRecord(nil), r.ring...)
}
