package model

import "time"

// Snapshot holds the raw, possibly partial quote fields of one instrument
// for one refresh cycle. Any numeric field may be nil.
type Snapshot struct {
	Symbol            string            `json:"symbol"`
	RealtimePrice     *float64          `json:"realtime_price"`
	PreviousClose     *float64          `json:"previous_close"`
	IntradayLast      *float64          `json:"intraday_last"`
	IntradayHigh      *float64          `json:"intraday_high"`
	IntradayInterval  string            `json:"intraday_interval"`
	ReferenceHigh     *float64          `json:"reference_high"`
	ReferenceHighKind ReferenceHighKind `json:"reference_high_kind"`
	FetchedAt         time.Time         `json:"fetched_at"`
}

// ResolvedQuote is derived from exactly one Snapshot.
type ResolvedQuote struct {
	Price        *float64     `json:"price"`
	PriceSource  PriceSource  `json:"price_source"`
	Drawdown     *float64     `json:"drawdown"`
	Status       Status       `json:"status"`
	Insufficient bool         `json:"insufficient"` // status defaulted to watch for lack of data
	Missing      []Diagnostic `json:"missing"`
}

// FactSheet is the renderable result for one instrument.
type FactSheet struct {
	Symbol            string            `json:"symbol"`
	Price             *float64          `json:"price"`
	PriceSource       PriceSource       `json:"price_source"`
	PreviousClose     *float64          `json:"previous_close"`
	DayHigh           *float64          `json:"day_high"`
	ReferenceHigh     *float64          `json:"reference_high"`
	ReferenceHighKind ReferenceHighKind `json:"reference_high_kind"`
	Drawdown          *float64          `json:"drawdown"`
	Status            Status            `json:"status"`
	StatusLabel       string            `json:"status_label"`
	Insufficient      bool              `json:"insufficient"`
	Missing           []Diagnostic      `json:"missing_diagnostics"`
	IntradayInterval  string            `json:"intraday_interval"`
	FetchedAt         time.Time         `json:"fetched_at"`
}

// HasDiagnostic reports whether d is among the sheet's diagnostics.
func (f *FactSheet) HasDiagnostic(d Diagnostic) bool {
	for _, m := range f.Missing {
		if m == d {
			return true
		}
	}
	return false
}
