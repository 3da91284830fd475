package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"DrawdownSentinel/internal/calculator"
	"DrawdownSentinel/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	limiter   *rate.Limiter
}

// NewYahooFetcher creates a new Yahoo Finance fetcher limited to
// requestsPerSecond outgoing calls.
func NewYahooFetcher(proxyURL string, requestsPerSecond int, timeout time.Duration) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"NDX":    "^NDX",
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []interface{} `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func at(vals []interface{}, i int) float64 {
	if i >= len(vals) {
		return 0
	}
	return toFloat(vals[i])
}

type chartData struct {
	bars        []model.OHLCV
	marketPrice float64
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) (*chartData, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrProviderUnavailable, err)
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo fetch: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo read body: %v", ErrProviderUnavailable, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: yahoo status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	result := chart.Chart.Result[0]
	out := &chartData{marketPrice: result.Meta.RegularMarketPrice}
	if len(result.Indicators.Quote) == 0 {
		return out, nil
	}
	quote := result.Indicators.Quote[0]
	var adj []interface{}
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	out.bars = make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := at(quote.Open, i)
		h := at(quote.High, i)
		l := at(quote.Low, i)
		c := at(quote.Close, i)
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		out.bars = append(out.bars, model.OHLCV{
			Time:     time.Unix(ts, 0),
			Open:     o,
			High:     h,
			Low:      l,
			Close:    c,
			AdjClose: at(adj, i),
			Volume:   at(quote.Volume, i),
		})
	}

	sort.Slice(out.bars, func(i, j int) bool { return out.bars[i].Time.Before(out.bars[j].Time) })
	return out, nil
}

func (f *YahooFetcher) RealtimePrice(ctx context.Context, symbol string) (float64, error) {
	data, err := f.fetchChart(ctx, symbol, "1m", "1d")
	if err != nil {
		return 0, err
	}
	if data.marketPrice > 0 {
		return data.marketPrice, nil
	}
	if last, err := calculator.LastClose(data.bars); err == nil {
		return last, nil
	}
	return 0, fmt.Errorf("yahoo %s realtime: %w", symbol, ErrNoData)
}

func (f *YahooFetcher) DailyHistory(ctx context.Context, symbol string, lookbackDays int) ([]model.OHLCV, error) {
	rng := "2y"
	switch {
	case lookbackDays <= 5:
		rng = "5d"
	case lookbackDays <= 30:
		rng = "1mo"
	case lookbackDays <= 90:
		rng = "3mo"
	case lookbackDays <= 180:
		rng = "6mo"
	case lookbackDays <= 365:
		rng = "1y"
	}
	data, err := f.fetchChart(ctx, symbol, "1d", rng)
	if err != nil {
		return nil, err
	}
	bars := data.bars
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo %s daily: %w", symbol, ErrNoData)
	}
	if len(bars) > lookbackDays {
		bars = bars[len(bars)-lookbackDays:]
	}
	return bars, nil
}

func (f *YahooFetcher) IntradaySeries(ctx context.Context, symbol, interval string) ([]model.OHLCV, error) {
	data, err := f.fetchChart(ctx, symbol, interval, "1d")
	if err != nil {
		return nil, err
	}
	if len(data.bars) == 0 {
		return nil, fmt.Errorf("yahoo %s %s bars: %w", symbol, interval, ErrNoData)
	}
	return data.bars, nil
}

func (f *YahooFetcher) FullHistoryHigh(ctx context.Context, symbol string, adjusted bool) (float64, error) {
	data, err := f.fetchChart(ctx, symbol, "1d", "max")
	if err != nil {
		return 0, err
	}
	high, err := calculator.ReferenceHigh(data.bars, adjusted)
	if err != nil {
		return 0, fmt.Errorf("yahoo %s history high: %w", symbol, ErrNoData)
	}
	return high, nil
}
