package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScanner/internal/backtest"
	"SignalScanner/internal/collector"
	"SignalScanner/internal/metrics"
	"SignalScanner/internal/model"
	"SignalScanner/internal/scanner"
	"SignalScanner/internal/tickers"
)

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func newServer(symbols []string) *Server {
	volumes := append(flat(39, 1e6), 2e6)
	mock := &collector.MockFetcher{
		Series: map[string][]model.OHLCV{
			"UP":    collector.GenerateBars(append(flat(39, 100), 105), volumes...),
			"FLAT":  collector.GenerateBars(flat(60, 100)),
			"SHORT": collector.GenerateBars(flat(20, 100)),
		},
		Companies: map[string]model.Company{
			"UP": {ShortName: "Up Co", Sector: "Energy"},
		},
	}
	reg := prometheus.NewRegistry()
	col := collector.NewCollector(mock, 100*24*time.Hour, 0)
	return &Server{
		Scanner:    scanner.New(col, metrics.NewScan(reg)),
		Backtester: &backtest.Runner{Source: col, Lookback: 730 * 24 * time.Hour},
		Tickers: func() ([]string, error) {
			if len(symbols) == 0 {
				return nil, tickers.ErrNoTickers
			}
			return symbols, nil
		},
		Momentum: scanner.DefaultFilterConfig(scanner.ModeMomentum),
		Dip:      scanner.DefaultFilterConfig(scanner.ModeDip),
		Gatherer: reg,
	}
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]interface{}
	if rec.Header().Get("Content-Type") != "" && rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthz(t *testing.T) {
	rec, body := get(t, newServer(nil).Router(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestScan(t *testing.T) {
	h := newServer([]string{"UP", "FLAT", "SHORT"}).Router()

	rec, body := get(t, h, "/api/scan?group=sector")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["no_matches"])
	records := body["records"].([]interface{})
	require.Len(t, records, 1)
	assert.Equal(t, "UP", records[0].(map[string]interface{})["symbol"])
	groups := body["groups"].([]interface{})
	assert.Equal(t, "Energy", groups[0].(map[string]interface{})["sector"])
	assert.Len(t, body["skipped"], 1)

	rec, body = get(t, h, "/api/scan?min_change=6")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["no_matches"])

	rec, body = get(t, h, "/api/scan?mode=dip")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["no_matches"])
}

func TestScan_BadRequests(t *testing.T) {
	h := newServer([]string{"UP"}).Router()
	for _, target := range []string{
		"/api/scan?mode=sideways",
		"/api/scan?min_change=abc",
		"/api/scan?mode=dip&max_rsi=200",
		"/api/scan?mode=dip&dip_policy=any",
	} {
		rec, body := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotEmpty(t, body["error"], target)
	}
}

func TestScan_NoTickers(t *testing.T) {
	rec, body := get(t, newServer(nil).Router(), "/api/scan")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, body["error"], "no tickers")
}

func TestBacktest(t *testing.T) {
	h := newServer(nil).Router()

	rec, body := get(t, h, "/api/backtest/flat")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "FLAT", body["symbol"])
	assert.Equal(t, 0.0, body["signal_count"])
	assert.Nil(t, body["stats"])

	rec, _ = get(t, h, "/api/backtest/SHORT")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = get(t, h, "/api/backtest/NOPE")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMetrics(t *testing.T) {
	h := newServer([]string{"UP", "SHORT"}).Router()
	get(t, h, "/api/scan")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `signalscanner_tickers_total{outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), `signalscanner_tickers_total{outcome="insufficient_history"} 1`)
}
