package strategy

import "DrawdownSentinel/internal/model"

// referenceHigh returns the snapshot's high, or nil when it is absent or
// non-positive.
func referenceHigh(s *model.Snapshot) *float64 {
	if s.ReferenceHigh == nil || *s.ReferenceHigh <= 0 {
		return nil
	}
	return s.ReferenceHigh
}

// Resolve derives the resolved quote of one snapshot.
func Resolve(s *model.Snapshot, t Thresholds) model.ResolvedQuote {
	price, source := ResolvePrice(s)
	high := referenceHigh(s)
	res := Evaluate(price, high, t)

	q := model.ResolvedQuote{
		Price:        price,
		PriceSource:  source,
		Drawdown:     res.Drawdown,
		Status:       res.Status,
		Insufficient: res.Insufficient,
		Missing:      []model.Diagnostic{},
	}
	if s.PreviousClose == nil {
		q.Missing = append(q.Missing, model.PreviousCloseMissing)
	}
	if high == nil {
		q.Missing = append(q.Missing, model.ReferenceHighMissing)
	}
	if price == nil {
		q.Missing = append(q.Missing, model.PriceMissing)
	}
	return q
}

// Assemble builds the renderable fact sheet for one snapshot. It never
// fails: absent inputs show up as diagnostics next to whatever could be
// computed.
func Assemble(s *model.Snapshot, t Thresholds) model.FactSheet {
	q := Resolve(s, t)

	label := InsufficientLabel
	if !q.Insufficient {
		_, label = Classify(*q.Drawdown, t)
	}

	high := referenceHigh(s)
	kind := s.ReferenceHighKind
	if high == nil {
		kind = model.HighMissing
	}

	return model.FactSheet{
		Symbol:            s.Symbol,
		Price:             q.Price,
		PriceSource:       q.PriceSource,
		PreviousClose:     s.PreviousClose,
		DayHigh:           s.IntradayHigh,
		ReferenceHigh:     high,
		ReferenceHighKind: kind,
		Drawdown:          q.Drawdown,
		Status:            q.Status,
		StatusLabel:       label,
		Insufficient:      q.Insufficient,
		Missing:           q.Missing,
		IntradayInterval:  s.IntradayInterval,
		FetchedAt:         s.FetchedAt,
	}
}
