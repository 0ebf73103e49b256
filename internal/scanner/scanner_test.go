package scanner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScanner/internal/collector"
	"SignalScanner/internal/model"
	"SignalScanner/internal/tickers"
)

func rec(symbol string, label model.CompositeLabel, ind model.IndicatorSnapshot) model.ScanRecord {
	return model.ScanRecord{Symbol: symbol, Name: symbol, Label: label, Indicators: ind}
}

func symbols(records []model.ScanRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Symbol
	}
	return out
}

func TestFilter_Momentum(t *testing.T) {
	records := []model.ScanRecord{
		rec("A", model.LabelNone, model.IndicatorSnapshot{ChangePct: 5, VolumeRatio: 2.0}),
		rec("B", model.LabelNone, model.IndicatorSnapshot{ChangePct: 1, VolumeRatio: 2.0}),
	}
	cfg := DefaultFilterConfig(ModeMomentum)
	cfg.MinChange = 3
	cfg.MinVolume = 1.5

	got := Filter(records, cfg)
	assert.Equal(t, []string{"A"}, symbols(got))
	assert.Len(t, records, 2)
}

func TestFilter_Dip(t *testing.T) {
	records := []model.ScanRecord{
		rec("BOTH", model.LabelNone, model.IndicatorSnapshot{RSI: 25, DeviationPct: -8}),
		rec("RSI", model.LabelNone, model.IndicatorSnapshot{RSI: 25, DeviationPct: -1}),
		rec("BAND", model.LabelOversold, model.IndicatorSnapshot{RSI: 45, DeviationPct: -1, BBOversold: true}),
		rec("NONE", model.LabelNone, model.IndicatorSnapshot{RSI: 60, DeviationPct: 2}),
	}

	strict := DefaultFilterConfig(ModeDip)
	assert.Equal(t, []string{"BOTH"}, symbols(Filter(records, strict)))

	loose := strict
	loose.DipPolicy = DipLoose
	assert.Equal(t, []string{"BOTH", "RSI", "BAND"}, symbols(Filter(records, loose)))
}

func TestFilter_Fundamentals(t *testing.T) {
	a := rec("A", model.LabelNone, model.IndicatorSnapshot{ChangePct: 5, VolumeRatio: 2})
	a.Fundamentals = model.FundamentalSnapshot{SafetyScore: 75, DividendYield: 3.5}
	b := rec("B", model.LabelNone, model.IndicatorSnapshot{ChangePct: 5, VolumeRatio: 2})
	b.Fundamentals = model.FundamentalSnapshot{SafetyScore: 75, DividendYield: 1}

	cfg := DefaultFilterConfig(ModeMomentum)
	assert.Len(t, Filter([]model.ScanRecord{a, b}, cfg), 2)

	cfg.FundamentalFilter = true
	assert.Equal(t, []string{"A"}, symbols(Filter([]model.ScanRecord{a, b}, cfg)))
}

func TestFilterConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultFilterConfig(ModeMomentum).Validate())
	assert.NoError(t, DefaultFilterConfig(ModeDip).Validate())

	bad := DefaultFilterConfig("sideways")
	assert.Error(t, bad.Validate())

	bad = DefaultFilterConfig(ModeDip)
	bad.MaxRSI = 120
	assert.Error(t, bad.Validate())
}

func TestSort(t *testing.T) {
	records := []model.ScanRecord{
		rec("D", model.LabelNone, model.IndicatorSnapshot{ChangePct: 9, DeviationPct: -2}),
		rec("C", model.LabelGoldenCross, model.IndicatorSnapshot{ChangePct: 4, DeviationPct: -9}),
		rec("B", model.LabelGoldenCross, model.IndicatorSnapshot{ChangePct: 6, DeviationPct: -3}),
		rec("A", model.LabelGoldenCross, model.IndicatorSnapshot{ChangePct: 6, DeviationPct: -3}),
		rec("E", model.LabelStrongestBuy, model.IndicatorSnapshot{ChangePct: 1, DeviationPct: 0}),
	}

	momentum := append([]model.ScanRecord(nil), records...)
	Sort(momentum, ModeMomentum)
	assert.Equal(t, []string{"E", "A", "B", "C", "D"}, symbols(momentum))

	dip := append([]model.ScanRecord(nil), records...)
	Sort(dip, ModeDip)
	assert.Equal(t, []string{"E", "C", "A", "B", "D"}, symbols(dip))
}

func TestGroupBySector(t *testing.T) {
	records := []model.ScanRecord{
		{Symbol: "1", Sector: "Technology"},
		{Symbol: "2", Sector: ""},
		{Symbol: "3", Sector: "Energy"},
		{Symbol: "4", Sector: "Technology"},
	}
	groups := GroupBySector(records)
	require.Len(t, groups, 3)
	assert.Equal(t, "Technology", groups[0].Sector)
	assert.Equal(t, []string{"1", "4"}, symbols(groups[0].Records))
	assert.Equal(t, UnknownSector, groups[1].Sector)
	assert.Equal(t, "Energy", groups[2].Sector)

	total := 0
	for _, g := range groups {
		total += len(g.Records)
	}
	assert.Equal(t, len(records), total)
}

func TestAlertRule(t *testing.T) {
	rule := DefaultAlertRule()
	records := []model.ScanRecord{
		rec("FLAT", model.LabelNone, model.IndicatorSnapshot{ChangePct: 1}),
		rec("JUMP", model.LabelNone, model.IndicatorSnapshot{ChangePct: 3.5}),
		rec("GC", model.LabelGoldenCross, model.IndicatorSnapshot{ChangePct: -1, GoldenCross: true}),
	}
	assert.Equal(t, []string{"GC", "JUMP"}, symbols(rule.Hits(records)))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, defaultSummary, Summarize(""))
	assert.Equal(t, "短い説明", Summarize("短い説明"))

	long := strings.Repeat("あ", 310)
	got := Summarize(long)
	assert.Equal(t, strings.Repeat("あ", 300)+"...", got)
}

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func newScanner() *Scanner {
	mock := &collector.MockFetcher{
		Series: map[string][]model.OHLCV{
			"OK":    collector.GenerateBars(rising(40)),
			"SHORT": collector.GenerateBars(rising(10)),
		},
		Companies: map[string]model.Company{
			"OK": {ShortName: "Okay Corp", Sector: "Industrials", TrailingPE: 10},
		},
		News: map[string][]model.Headline{
			"OK": {{Title: "Okay Corp 上方修正"}},
		},
		Fail: map[string]bool{"DOWN": true},
	}
	return New(collector.NewCollector(mock, 100*24*time.Hour, 0), nil)
}

func TestScanner_Run(t *testing.T) {
	report, err := newScanner().Run(context.Background(), []string{"OK", "DOWN", "SHORT"})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Records, 1)
	r := report.Records[0]
	assert.Equal(t, "OK", r.Symbol)
	assert.Equal(t, "Okay Corp", r.Name)
	assert.Equal(t, "Industrials", r.Sector)
	assert.Equal(t, defaultSummary, r.Summary)
	assert.Equal(t, model.PolarityPositive, r.Sentiment.Polarity)
	assert.Equal(t, 25, r.Fundamentals.SafetyScore)

	assert.Equal(t, []string{"DOWN", "SHORT"}, []string{report.Skipped[0].Symbol, report.Skipped[1].Symbol})
}

func TestScanner_Run_NoTickers(t *testing.T) {
	_, err := newScanner().Run(context.Background(), nil)
	assert.ErrorIs(t, err, tickers.ErrNoTickers)
	assert.ErrorIs(t, err, model.ErrConfigurationMissing)
}

func TestScanner_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newScanner().Run(ctx, []string{"OK"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanner_Scan_NoMatches(t *testing.T) {
	cfg := DefaultFilterConfig(ModeDip)
	res, err := newScanner().Scan(context.Background(), []string{"OK"}, cfg, true)
	require.NoError(t, err)
	assert.True(t, res.NoMatches)
	assert.Empty(t, res.Records)

	_, err = newScanner().Scan(context.Background(), []string{"OK"}, DefaultFilterConfig("x"), false)
	assert.ErrorIs(t, err, model.ErrConfigurationMissing)
}
