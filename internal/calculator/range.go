package calculator

import (
	"errors"
	"math"

	"DrawdownSentinel/internal/model"
)

var errNoBars = errors.New("no bars provided")

// LastClose returns the close of the most recent bar with a positive close.
func LastClose(bars []model.OHLCV) (float64, error) {
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Close > 0 {
			return bars[i].Close, nil
		}
	}
	return 0, errNoBars
}

// DayHigh returns the running maximum of bar highs.
func DayHigh(bars []model.OHLCV) (float64, error) {
	high := math.Inf(-1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
	}
	if math.IsInf(high, -1) || high <= 0 {
		return 0, errNoBars
	}
	return high, nil
}

// ReferenceHigh scans the full history and returns the highest high.
// With adjusted set, each high is rescaled by its bar's adjclose/close ratio
// so the result sits on today's split/dividend scale; bars without an
// adjusted close are skipped in that mode.
func ReferenceHigh(bars []model.OHLCV, adjusted bool) (float64, error) {
	high := math.Inf(-1)
	for _, b := range bars {
		h := b.High
		if adjusted {
			if b.AdjClose <= 0 || b.Close <= 0 {
				continue
			}
			h = b.High * b.AdjClose / b.Close
		}
		if h > high {
			high = h
		}
	}
	if math.IsInf(high, -1) || high <= 0 {
		return 0, errNoBars
	}
	return high, nil
}
