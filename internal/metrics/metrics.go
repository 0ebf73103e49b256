// Package metrics exposes Prometheus instrumentation for scan runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ticker outcomes.
const (
	OutcomeOK                  = "ok"
	OutcomeInsufficientHistory = "insufficient_history"
	OutcomeProviderUnavailable = "provider_unavailable"
	OutcomeError               = "error"
)

// Scan holds the collectors for scanner runs. A nil *Scan is valid and records nothing.
type Scan struct {
	tickers  *prometheus.CounterVec
	labels   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	alerts   *prometheus.CounterVec
}

// NewScan creates the collectors and registers them on reg.
func NewScan(reg prometheus.Registerer) *Scan {
	s := &Scan{
		tickers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalscanner",
			Name:      "tickers_total",
			Help:      "Tickers processed, by outcome.",
		}, []string{"outcome"}),
		labels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalscanner",
			Name:      "labels_total",
			Help:      "Composite labels assigned to scanned tickers.",
		}, []string{"label"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "signalscanner",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a scan or backtest run.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"kind"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalscanner",
			Name:      "alerts_total",
			Help:      "Alert deliveries, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(s.tickers, s.labels, s.duration, s.alerts)
	return s
}

// Ticker counts one processed ticker.
func (s *Scan) Ticker(outcome string) {
	if s == nil {
		return
	}
	s.tickers.WithLabelValues(outcome).Inc()
}

// Label counts one assigned composite label.
func (s *Scan) Label(code string) {
	if s == nil {
		return
	}
	s.labels.WithLabelValues(code).Inc()
}

// Run observes the duration of a run of the given kind ("scan", "backtest").
func (s *Scan) Run(kind string, d time.Duration) {
	if s == nil {
		return
	}
	s.duration.WithLabelValues(kind).Observe(d.Seconds())
}

// Alert counts one alert delivery attempt.
func (s *Scan) Alert(ok bool) {
	if s == nil {
		return
	}
	result := "sent"
	if !ok {
		result = "failed"
	}
	s.alerts.WithLabelValues(result).Inc()
}
