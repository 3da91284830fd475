package collector

import (
	"context"
	"errors"

	"DrawdownSentinel/internal/model"
)

var (
	// ErrProviderUnavailable wraps network, rate-limit and timeout failures.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrNoData means the provider answered but had nothing for the query.
	ErrNoData = errors.New("no data returned")
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	RealtimePrice(ctx context.Context, symbol string) (float64, error)
	DailyHistory(ctx context.Context, symbol string, lookbackDays int) ([]model.OHLCV, error)
	IntradaySeries(ctx context.Context, symbol, interval string) ([]model.OHLCV, error)
	FullHistoryHigh(ctx context.Context, symbol string, adjusted bool) (float64, error)
	Name() string
}

// DefaultIntradayIntervals is tried finest first.
var DefaultIntradayIntervals = []string{"1m", "2m", "5m"}

// FetchIntraday walks intervals in order and returns the first non-empty
// series with the interval that produced it. When all fail the series is
// empty and tagged model.IntervalNA; the last error is returned with it.
func FetchIntraday(ctx context.Context, f Fetcher, symbol string, intervals []string) (model.IntradaySeries, error) {
	lastErr := ErrNoData
	for _, interval := range intervals {
		bars, err := f.IntradaySeries(ctx, symbol, interval)
		if err != nil {
			lastErr = err
			continue
		}
		if len(bars) == 0 {
			continue
		}
		return model.IntradaySeries{Bars: bars, Interval: interval}, nil
	}
	return model.IntradaySeries{Interval: model.IntervalNA}, lastErr
}
