// Package backtest replays golden crosses over history and measures the
// return a fixed number of bars later.
package backtest

import (
	"context"
	"fmt"
	"time"

	"SignalScanner/internal/calculator"
	"SignalScanner/internal/model"
)

const (
	// MinBars is the shortest series a backtest accepts.
	MinBars = 50
	// DefaultHorizon is the forward window in bars.
	DefaultHorizon = 3
)

// Run records every MA5/MA25 golden cross that has horizon bars of future
// data and computes the forward close-to-close return of each.
func Run(series *model.PriceSeries, horizon int) (*model.BacktestResult, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("backtest: horizon must be positive, got %d", horizon)
	}
	if series.Len() < MinBars {
		return nil, fmt.Errorf("backtest %s: need %d bars, got %d: %w",
			series.Symbol, MinBars, series.Len(), model.ErrInsufficientHistory)
	}

	closes := series.Closes()
	flags, err := calculator.GoldenCrossAt(closes, calculator.ShortMA, calculator.LongMA)
	if err != nil {
		return nil, fmt.Errorf("backtest %s: %w", series.Symbol, err)
	}

	res := &model.BacktestResult{Symbol: series.Symbol, Horizon: horizon, Signals: []model.BacktestSignal{}}
	for t := 0; t+horizon < len(closes); t++ {
		if !flags[t] || closes[t] == 0 {
			continue
		}
		fwd := closes[t+horizon]
		res.Signals = append(res.Signals, model.BacktestSignal{
			Date:             series.Bars[t].Time,
			Close:            closes[t],
			ForwardClose:     fwd,
			ForwardReturnPct: (fwd - closes[t]) / closes[t] * 100,
		})
	}
	res.SignalCount = len(res.Signals)
	res.Stats = Stats(res.Signals)
	return res, nil
}

// Stats aggregates forward returns. It returns nil for no signals.
func Stats(signals []model.BacktestSignal) *model.BacktestStats {
	if len(signals) == 0 {
		return nil
	}
	var wins int
	var sum float64
	for _, s := range signals {
		if s.ForwardReturnPct > 0 {
			wins++
		}
		sum += s.ForwardReturnPct
	}
	n := float64(len(signals))
	return &model.BacktestStats{HitRate: float64(wins) / n, MeanReturn: sum / n}
}

// HistorySource fetches a price series over a lookback window.
type HistorySource interface {
	History(ctx context.Context, symbol string, lookback time.Duration) (*model.PriceSeries, error)
}

// Runner fetches history and backtests one symbol.
type Runner struct {
	Source   HistorySource
	Lookback time.Duration
	Horizon  int
}

// Backtest fetches the symbol's history and runs the replay.
func (r *Runner) Backtest(ctx context.Context, symbol string) (*model.BacktestResult, error) {
	series, err := r.Source.History(ctx, symbol, r.Lookback)
	if err != nil {
		return nil, err
	}
	horizon := r.Horizon
	if horizon == 0 {
		horizon = DefaultHorizon
	}
	return Run(series, horizon)
}
