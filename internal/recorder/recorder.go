package recorder

import (
	"time"

	"DrawdownSentinel/internal/model"
)

// CycleRecord summarizes one refresh cycle.
type CycleRecord struct {
	CycleID     string                  `json:"cycle_id"`
	Seq         uint64                  `json:"seq"`
	GeneratedAt time.Time               `json:"generated_at"`
	Statuses    map[string]model.Status `json:"statuses"`
	Drawdowns   map[string]*float64     `json:"drawdowns"`
	Degraded    []string                `json:"degraded"` // symbols with diagnostics
}

// Recorder keeps recent cycle history in memory and reports status changes.
type Recorder interface {
	// RecordCycle stores b and returns the status transitions since the
	// previous recorded cycle.
	RecordCycle(b *model.Board) []model.Transition
	History() []CycleRecord
}

func summarize(b *model.Board) CycleRecord {
	rec := CycleRecord{
		CycleID:     b.CycleID,
		Seq:         b.Seq,
		GeneratedAt: b.GeneratedAt,
		Statuses:    make(map[string]model.Status, len(b.Sheets)),
		Drawdowns:   make(map[string]*float64, len(b.Sheets)),
		Degraded:    []string{},
	}
	for _, s := range b.Sheets {
		rec.Statuses[s.Symbol] = s.Status
		rec.Drawdowns[s.Symbol] = s.Drawdown
		if len(s.Missing) > 0 {
			rec.Degraded = append(rec.Degraded, s.Symbol)
		}
	}
	return rec
}
