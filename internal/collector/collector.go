package collector

import (
	"context"
	"time"

	"DrawdownSentinel/internal/cache"
	"DrawdownSentinel/internal/calculator"
	"DrawdownSentinel/internal/common"
	"DrawdownSentinel/internal/model"
)

// previousCloseLookback is enough daily bars to span a long weekend.
const previousCloseLookback = 5

// Collector builds raw snapshots through the quote cache. It is the
// boundary where provider failures turn into absent fields.
type Collector struct {
	Fetcher   Fetcher
	Cache     *cache.Cache
	Intervals []string
	HighKind  model.ReferenceHighKind
	Logger    *common.Logger
	Now       func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, c *cache.Cache, highKind model.ReferenceHighKind, intervals []string, logger *common.Logger) *Collector {
	if len(intervals) == 0 {
		intervals = DefaultIntradayIntervals
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Collector{
		Fetcher:   fetcher,
		Cache:     c,
		Intervals: intervals,
		HighKind:  highKind,
		Logger:    logger,
		Now:       time.Now,
	}
}

// Snapshot fetches every raw field for symbol. Each field is fetched
// independently; a failure leaves only that field nil.
func (c *Collector) Snapshot(ctx context.Context, symbol string) *model.Snapshot {
	snap := &model.Snapshot{
		Symbol:            symbol,
		IntradayInterval:  model.IntervalNA,
		ReferenceHighKind: model.HighMissing,
		FetchedAt:         c.Now(),
	}

	if v, ok := c.realtime(ctx, symbol); ok {
		snap.RealtimePrice = model.Float(v)
	}
	if v, ok := c.previousClose(ctx, symbol); ok {
		snap.PreviousClose = model.Float(v)
	}
	if series, ok := c.intraday(ctx, symbol); ok {
		snap.IntradayInterval = series.Interval
		if v, err := calculator.LastClose(series.Bars); err == nil {
			snap.IntradayLast = model.Float(v)
		}
		if v, err := calculator.DayHigh(series.Bars); err == nil {
			snap.IntradayHigh = model.Float(v)
		}
	}
	if v, ok := c.referenceHigh(ctx, symbol); ok {
		snap.ReferenceHigh = model.Float(v)
		snap.ReferenceHighKind = c.HighKind
	}

	c.Logger.Debug().
		Str("symbol", symbol).
		Bool("realtime", snap.RealtimePrice != nil).
		Bool("previous_close", snap.PreviousClose != nil).
		Str("intraday_interval", snap.IntradayInterval).
		Bool("reference_high", snap.ReferenceHigh != nil).
		Msg("snapshot collected")
	return snap
}

func (c *Collector) realtime(ctx context.Context, symbol string) (float64, bool) {
	return cache.Fetch(ctx, c.Cache, cache.NewKey(cache.KindRealtime, symbol), func(ctx context.Context) (float64, error) {
		return c.Fetcher.RealtimePrice(ctx, symbol)
	})
}

func (c *Collector) previousClose(ctx context.Context, symbol string) (float64, bool) {
	return cache.Fetch(ctx, c.Cache, cache.NewKey(cache.KindPreviousClose, symbol), func(ctx context.Context) (float64, error) {
		bars, err := c.Fetcher.DailyHistory(ctx, symbol, previousCloseLookback)
		if err != nil {
			return 0, err
		}
		return calculator.LastClose(bars)
	})
}

func (c *Collector) intraday(ctx context.Context, symbol string) (model.IntradaySeries, bool) {
	return cache.Fetch(ctx, c.Cache, cache.NewKey(cache.KindIntraday, symbol), func(ctx context.Context) (model.IntradaySeries, error) {
		return FetchIntraday(ctx, c.Fetcher, symbol, c.Intervals)
	})
}

func (c *Collector) referenceHigh(ctx context.Context, symbol string) (float64, bool) {
	adjusted := c.HighKind == model.HighAdjusted
	key := cache.NewKey(cache.KindReferenceHigh, symbol).WithVariant(string(c.HighKind))
	return cache.Fetch(ctx, c.Cache, key, func(ctx context.Context) (float64, error) {
		return c.Fetcher.FullHistoryHigh(ctx, symbol, adjusted)
	})
}
