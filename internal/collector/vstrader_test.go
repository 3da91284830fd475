package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVsTrader(t *testing.T) (*VsTraderFetcher, *string) {
	t.Helper()
	var auth string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/quote", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"price": 412.5}`)
	})
	mux.HandleFunc("/api/v1/bars/daily", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"timestamp":1772704800,"high":420,"close":415},{"timestamp":1772618400,"high":430,"close":410}]`)
	})
	mux.HandleFunc("/api/v1/bars/intraday", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") == "1m" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `[{"timestamp":1772704800,"high":413,"close":412}]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewVsTraderFetcher(srv.URL, "secret", "", 5*time.Second), &auth
}

func TestVsTrader_Quote(t *testing.T) {
	f, auth := newTestVsTrader(t)
	p, err := f.RealtimePrice(context.Background(), "QQQ")
	require.NoError(t, err)
	assert.Equal(t, 412.5, p)
	assert.Equal(t, "Bearer secret", *auth)
}

func TestVsTrader_DailyOrdered(t *testing.T) {
	f, _ := newTestVsTrader(t)
	bars, err := f.DailyHistory(context.Background(), "QQQ", 5)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 410.0, bars[0].Close)
	assert.Equal(t, 415.0, bars[1].Close)
}

func TestVsTrader_HistoryHigh(t *testing.T) {
	f, _ := newTestVsTrader(t)
	h, err := f.FullHistoryHigh(context.Background(), "QQQ", false)
	require.NoError(t, err)
	assert.Equal(t, 430.0, h)

	_, err = f.FullHistoryHigh(context.Background(), "QQQ", true)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestVsTrader_IntradayFallback(t *testing.T) {
	f, _ := newTestVsTrader(t)
	s, err := FetchIntraday(context.Background(), f, "QQQ", DefaultIntradayIntervals)
	require.NoError(t, err)
	assert.Equal(t, "2m", s.Interval)
	require.Len(t, s.Bars, 1)
}
