package model

import "time"

// MarketSession is the coarse trading-session state.
type MarketSession string

const (
	SessionOpen       MarketSession = "open"
	SessionAfterHours MarketSession = "after_hours"
	SessionClosed     MarketSession = "closed"
)

// Board is the output of one refresh cycle, one sheet per instrument in
// configured order.
type Board struct {
	CycleID     string        `json:"cycle_id"`
	Seq         uint64        `json:"seq"`
	GeneratedAt time.Time     `json:"generated_at"`
	Session     MarketSession `json:"session"`
	BeijingTime string        `json:"beijing_time"`
	LocalTime   string        `json:"los_angeles_time"`
	Sheets      []FactSheet   `json:"sheets"`
}

// Sheet returns the fact sheet for symbol, if present.
func (b *Board) Sheet(symbol string) (FactSheet, bool) {
	for _, s := range b.Sheets {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return FactSheet{}, false
}
