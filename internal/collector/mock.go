package collector

import (
	"context"
	"sync"
	"time"

	"DrawdownSentinel/internal/calculator"
	"DrawdownSentinel/internal/model"
)

// Method names a Fetcher method for call counting and error injection.
type Method string

const (
	MethodRealtime Method = "realtime"
	MethodDaily    Method = "daily"
	MethodIntraday Method = "intraday"
	MethodHigh     Method = "high"
)

// MockFetcher returns controllable fixed data for development and testing.
// Explicit maps win; symbols with only a BasePrice get generated bars.
type MockFetcher struct {
	mu sync.Mutex

	BasePrice     map[string]float64
	Realtime      map[string]float64
	Daily         map[string][]model.OHLCV
	Intraday      map[string]map[string][]model.OHLCV // symbol -> interval -> bars
	Highs         map[string]float64
	AdjustedHighs map[string]float64
	Errors        map[Method]error
	SymbolErrors  map[string]error

	calls map[Method]int
	tried map[string][]string
}

// NewMockFetcher creates an empty MockFetcher.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		BasePrice:     map[string]float64{},
		Realtime:      map[string]float64{},
		Daily:         map[string][]model.OHLCV{},
		Intraday:      map[string]map[string][]model.OHLCV{},
		Highs:         map[string]float64{},
		AdjustedHighs: map[string]float64{},
		Errors:        map[Method]error{},
		SymbolErrors:  map[string]error{},
		calls:         map[Method]int{},
		tried:         map[string][]string{},
	}
}

// NewDemoFetcher generates data around the given base prices.
func NewDemoFetcher(prices map[string]float64) *MockFetcher {
	m := NewMockFetcher()
	for sym, p := range prices {
		m.BasePrice[sym] = p
	}
	return m
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many times method was invoked.
func (m *MockFetcher) Calls(method Method) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// IntervalsTried returns the intraday intervals requested for symbol.
func (m *MockFetcher) IntervalsTried(symbol string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tried[symbol]...)
}

func (m *MockFetcher) begin(method Method, symbol string) error {
	m.calls[method]++
	if err := m.SymbolErrors[symbol]; err != nil {
		return err
	}
	return m.Errors[method]
}

func (m *MockFetcher) RealtimePrice(_ context.Context, symbol string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(MethodRealtime, symbol); err != nil {
		return 0, err
	}
	if v, ok := m.Realtime[symbol]; ok {
		return v, nil
	}
	if p, ok := m.BasePrice[symbol]; ok {
		return p, nil
	}
	return 0, ErrNoData
}

func (m *MockFetcher) DailyHistory(_ context.Context, symbol string, lookbackDays int) ([]model.OHLCV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(MethodDaily, symbol); err != nil {
		return nil, err
	}
	bars := m.daily(symbol, lookbackDays)
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	if len(bars) > lookbackDays {
		bars = bars[len(bars)-lookbackDays:]
	}
	return bars, nil
}

func (m *MockFetcher) daily(symbol string, days int) []model.OHLCV {
	if bars, ok := m.Daily[symbol]; ok {
		return bars
	}
	if p, ok := m.BasePrice[symbol]; ok {
		return generateMockBars(p, days, 24*time.Hour)
	}
	return nil
}

func (m *MockFetcher) IntradaySeries(_ context.Context, symbol, interval string) ([]model.OHLCV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tried[symbol] = append(m.tried[symbol], interval)
	if err := m.begin(MethodIntraday, symbol); err != nil {
		return nil, err
	}
	if byInterval, ok := m.Intraday[symbol]; ok {
		bars := byInterval[interval]
		if len(bars) == 0 {
			return nil, ErrNoData
		}
		return bars, nil
	}
	if p, ok := m.BasePrice[symbol]; ok {
		return generateMockBars(p, 60, time.Minute), nil
	}
	return nil, ErrNoData
}

func (m *MockFetcher) FullHistoryHigh(_ context.Context, symbol string, adjusted bool) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(MethodHigh, symbol); err != nil {
		return 0, err
	}
	highs := m.Highs
	if adjusted {
		highs = m.AdjustedHighs
	}
	if v, ok := highs[symbol]; ok {
		return v, nil
	}
	if bars := m.daily(symbol, 500); len(bars) > 0 {
		return calculator.ReferenceHigh(bars, adjusted)
	}
	return 0, ErrNoData
}

func generateMockBars(basePrice float64, count int, step time.Duration) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Now().Add(-time.Duration(count) * step)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:     start.Add(time.Duration(i) * step),
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			AdjClose: p,
			Volume:   1000000,
		}
	}
	return bars
}

