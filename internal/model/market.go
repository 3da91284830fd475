package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time     time.Time `json:"time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close,omitempty"` // 0 when the provider has no adjusted series
	Volume   float64   `json:"volume"`
}

// IntradaySeries is today's bar series plus the granularity that produced it.
type IntradaySeries struct {
	Bars     []OHLCV `json:"bars"`
	Interval string  `json:"interval"` // "1m", "2m", "5m" or IntervalNA
}

// IntervalNA tags an intraday series when every granularity failed.
const IntervalNA = "NA"

// Float returns a pointer to v, for populating optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
