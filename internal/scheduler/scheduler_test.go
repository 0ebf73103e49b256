package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScanner/internal/backtest"
	"SignalScanner/internal/collector"
	"SignalScanner/internal/model"
	"SignalScanner/internal/notifier"
	"SignalScanner/internal/scanner"
	"SignalScanner/internal/tickers"
)

type recordingSender struct {
	messages []string
	err      error
}

func (r *recordingSender) Send(_ context.Context, text string) error {
	r.messages = append(r.messages, text)
	return r.err
}

func closes(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func newScheduler(t *testing.T, sender notifier.Sender, symbols ...string) *Scheduler {
	t.Helper()
	jump := append(closes(39, 100, 0), 110)
	volumes := append(closes(39, 1e6, 0), 3e6)
	mock := &collector.MockFetcher{
		Series: map[string][]model.OHLCV{
			"JUMP": collector.GenerateBars(jump, volumes...),
			"FLAT": collector.GenerateBars(closes(40, 100, 0)),
			"LONG": collector.GenerateBars(closes(60, 100, 0)),
		},
		Companies: map[string]model.Company{"JUMP": {ShortName: "Jump Inc"}},
	}
	col := collector.NewCollector(mock, 100*24*time.Hour, 0)
	bt := &backtest.Runner{Source: col, Lookback: 730 * 24 * time.Hour}
	src := func() ([]string, error) {
		if len(symbols) == 0 {
			return nil, tickers.ErrNoTickers
		}
		return symbols, nil
	}
	return NewScheduler(context.Background(), scanner.New(col, nil), bt, sender, src)
}

func TestRunAlert_SendsHits(t *testing.T) {
	sender := &recordingSender{}
	s := newScheduler(t, sender, "FLAT", "JUMP")
	require.NoError(t, s.RunAlertNow())

	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.True(t, strings.HasPrefix(msg, notifier.AlertHeader))
	assert.Contains(t, msg, "【Jump Inc (JUMP)】")
	assert.Contains(t, msg, "騰落率: 10.0%")
	assert.NotContains(t, msg, "FLAT")
}

func TestRunAlert_NoHits(t *testing.T) {
	sender := &recordingSender{}
	s := newScheduler(t, sender, "FLAT")
	require.NoError(t, s.RunAlertNow())
	assert.Empty(t, sender.messages)
}

func TestRunAlert_Errors(t *testing.T) {
	s := newScheduler(t, &recordingSender{})
	assert.ErrorIs(t, s.RunAlertNow(), model.ErrConfigurationMissing)

	failing := &recordingSender{err: errors.New("boom")}
	s = newScheduler(t, failing, "JUMP")
	assert.Error(t, s.RunAlertNow())
	assert.Len(t, failing.messages, 1)
}

func TestRegister(t *testing.T) {
	s := newScheduler(t, &recordingSender{}, "FLAT")
	assert.NoError(t, s.Register("0 0 16 * * 1-5"))
	assert.Error(t, s.Register("not a cron"))
}

func TestHandleCommand(t *testing.T) {
	s := newScheduler(t, &recordingSender{}, "FLAT", "JUMP")
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/scan"), "Jump Inc (JUMP)")
	assert.Contains(t, s.HandleCommand(ctx, "/dip"), notifier.NoMatchesText)
	assert.Contains(t, s.HandleCommand(ctx, "/backtest long"), "シグナル数: 0")
	assert.Contains(t, s.HandleCommand(ctx, "/backtest"), "使い方")
	assert.Contains(t, s.HandleCommand(ctx, "/backtest NOPE"), "バックテスト失敗")
	assert.Contains(t, s.HandleCommand(ctx, "/help"), "/scan")
	assert.Empty(t, s.HandleCommand(ctx, "  "))
}
