package strategy

import "DrawdownSentinel/internal/model"

// ResolvePrice picks the current price by strict priority:
// realtime, then last intraday bar close, then previous close.
func ResolvePrice(s *model.Snapshot) (*float64, model.PriceSource) {
	switch {
	case s.RealtimePrice != nil:
		return s.RealtimePrice, model.SourceRealtime
	case s.IntradayLast != nil:
		return s.IntradayLast, model.SourceIntradayBar
	case s.PreviousClose != nil:
		return s.PreviousClose, model.SourcePreviousClose
	default:
		return nil, model.SourceNone
	}
}
