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

	"DrawdownSentinel/internal/calculator"
	"DrawdownSentinel/internal/model"
)

// vsHistoryLimit bounds the daily bars requested for a history high.
const vsHistoryLimit = 10000

// VsTraderFetcher implements Fetcher using the vstrader REST API.
// The API serves unadjusted bars only.
type VsTraderFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewVsTraderFetcher creates a new fetcher with optional proxy support.
func NewVsTraderFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *VsTraderFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VsTraderFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

// vsBar is the expected JSON shape from the vstrader API.
type vsBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *VsTraderFetcher) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: vstrader: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("%w: vstrader status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("vstrader: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("vstrader decode: %w", err)
	}
	return nil
}

func (f *VsTraderFetcher) RealtimePrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v1/quote?symbol=%s", f.BaseURL, url.QueryEscape(symbol))
	var result struct {
		Price float64 `json:"price"`
	}
	if err := f.get(ctx, endpoint, &result); err != nil {
		return 0, err
	}
	if result.Price <= 0 {
		return 0, fmt.Errorf("vstrader %s quote: %w", symbol, ErrNoData)
	}
	return result.Price, nil
}

func (f *VsTraderFetcher) DailyHistory(ctx context.Context, symbol string, lookbackDays int) ([]model.OHLCV, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(symbol), lookbackDays)
	return f.fetchBars(ctx, symbol, endpoint)
}

func (f *VsTraderFetcher) IntradaySeries(ctx context.Context, symbol, interval string) ([]model.OHLCV, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/intraday?symbol=%s&interval=%s", f.BaseURL, url.QueryEscape(symbol), interval)
	return f.fetchBars(ctx, symbol, endpoint)
}

func (f *VsTraderFetcher) FullHistoryHigh(ctx context.Context, symbol string, adjusted bool) (float64, error) {
	if adjusted {
		return 0, fmt.Errorf("vstrader %s adjusted history: %w", symbol, ErrNoData)
	}
	bars, err := f.DailyHistory(ctx, symbol, vsHistoryLimit)
	if err != nil {
		return 0, err
	}
	return calculator.ReferenceHigh(bars, false)
}

func (f *VsTraderFetcher) fetchBars(ctx context.Context, symbol, endpoint string) ([]model.OHLCV, error) {
	var vsBars []vsBar
	if err := f.get(ctx, endpoint, &vsBars); err != nil {
		return nil, err
	}
	if len(vsBars) == 0 {
		return nil, fmt.Errorf("vstrader %s bars: %w", symbol, ErrNoData)
	}
	bars := make([]model.OHLCV, len(vsBars))
	for i, vb := range vsBars {
		bars[i] = model.OHLCV{
			Time:   time.Unix(vb.Timestamp, 0),
			Open:   vb.Open,
			High:   vb.High,
			Low:    vb.Low,
			Close:  vb.Close,
			Volume: vb.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
