package model

// Status is the actionable drawdown tier.
type Status string

const (
	StatusBuy   Status = "buy"
	StatusGood  Status = "good"
	StatusPrep  Status = "prep"
	StatusWait  Status = "wait"
	StatusWatch Status = "watch"
)

// PriceSource records which field the price resolver picked.
type PriceSource string

const (
	SourceRealtime      PriceSource = "realtime"
	SourceIntradayBar   PriceSource = "intraday_bar"
	SourcePreviousClose PriceSource = "previous_close"
	SourceNone          PriceSource = "none"
)

// ReferenceHighKind is the history convention behind a reference high.
type ReferenceHighKind string

const (
	HighAdjusted   ReferenceHighKind = "adjusted"
	HighUnadjusted ReferenceHighKind = "unadjusted"
	HighMissing    ReferenceHighKind = "missing"
)

// Diagnostic tags a missing input on a fact sheet.
type Diagnostic string

const (
	PreviousCloseMissing Diagnostic = "previous_close_missing"
	ReferenceHighMissing Diagnostic = "reference_high_missing"
	PriceMissing         Diagnostic = "price_missing"
)

// Transition is a status change of one instrument between two cycles.
type Transition struct {
	Symbol   string  `json:"symbol"`
	From     Status  `json:"from"`
	To       Status  `json:"to"`
	Drawdown float64 `json:"drawdown"`
	Price    float64 `json:"price"`
}
