package model

import "time"

// BacktestSignal is one historical golden cross and its forward return.
type BacktestSignal struct {
	Date             time.Time `json:"date"`
	Close            float64   `json:"close"`
	ForwardClose     float64   `json:"forward_close"`
	ForwardReturnPct float64   `json:"forward_return_pct"`
}

// BacktestStats aggregates the forward returns of the recorded signals.
type BacktestStats struct {
	HitRate    float64 `json:"hit_rate"` // 0.0 ~ 1.0
	MeanReturn float64 `json:"mean_return"`
}

// BacktestResult is recomputed per invocation. Stats is nil when no signal qualified.
type BacktestResult struct {
	Symbol      string           `json:"symbol"`
	Horizon     int              `json:"horizon"`
	Signals     []BacktestSignal `json:"signals"`
	SignalCount int              `json:"signal_count"`
	Stats       *BacktestStats   `json:"stats"`
}
