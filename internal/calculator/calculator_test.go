package calculator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScanner/internal/model"
)

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func oscillating(n int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	p := 1000.0
	for i := range out {
		p += math.Sin(float64(i)/3)*15 + (r.Float64()-0.5)*20
		if p < 1 {
			p = 1
		}
		out[i] = p
	}
	return out
}

func seriesFrom(closes []float64) *model.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000 + float64(i%7)*100,
		}
	}
	return &model.PriceSeries{Symbol: "TEST", Bars: bars}
}

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-12)

	_, err = CalculateSMA([]float64{1, 2}, 3)
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)

	_, err = CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestCalculateSMASeries_MatchesTechan(t *testing.T) {
	closes := oscillating(80, 7)

	ts := techan.NewTimeSeries()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		candle := techan.NewCandle(techan.NewTimePeriod(start.Add(time.Duration(i)*24*time.Hour), 24*time.Hour))
		candle.ClosePrice = big.NewDecimal(c)
		require.True(t, ts.AddCandle(candle))
	}
	sma := techan.NewSimpleMovingAverage(techan.NewClosePriceIndicator(ts), LongMA)

	ours, err := CalculateSMASeries(closes, LongMA)
	require.NoError(t, err)
	for i := LongMA - 1; i < len(closes); i++ {
		assert.InDelta(t, sma.Calculate(i).Float(), ours[i], 1e-6, "bar %d", i)
	}
	assert.True(t, math.IsNaN(ours[LongMA-2]))
}

func TestCalculateEMASeries(t *testing.T) {
	ema, err := CalculateEMASeries([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(ema[1]))
	assert.InDelta(t, 2.0, ema[2], 1e-12)
	assert.InDelta(t, 3.0, ema[3], 1e-12)
	assert.InDelta(t, 4.0, ema[4], 1e-12)
}

func TestCalculateRSI_Bounds(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		closes := oscillating(60, seed)
		for n := RSIPeriod + 1; n <= len(closes); n++ {
			rsi, err := CalculateRSI(closes[:n], RSIPeriod)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, rsi, 0.0)
			assert.LessOrEqual(t, rsi, 100.0)
		}
	}
}

func TestCalculateRSI_NoLosses(t *testing.T) {
	rsi, err := CalculateRSI(linear(20, 100, 1), RSIPeriod)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)

	// A flat window has no losses either.
	rsi, err = CalculateRSI(linear(20, 100, 0), RSIPeriod)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)

	// A loss outside the trailing window does not count.
	closes := append([]float64{200}, linear(15, 100, 1)...)
	rsi, err = CalculateRSI(closes, RSIPeriod)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)
}

func TestCalculateRSI_KnownValue(t *testing.T) {
	// 7 gains of 2 and 7 losses of 1: RS = 2, RSI = 66.67
	closes := []float64{100}
	for i := 0; i < 7; i++ {
		last := closes[len(closes)-1]
		closes = append(closes, last+2, last+1)
	}
	rsi, err := CalculateRSI(closes, RSIPeriod)
	require.NoError(t, err)
	assert.InDelta(t, 100-100/3.0, rsi, 1e-9)

	rsi, err = CalculateRSI(linear(20, 100, -1), RSIPeriod)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rsi)

	_, err = CalculateRSI(linear(14, 100, 1), RSIPeriod)
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)
}

func TestGoldenCross_Definition(t *testing.T) {
	check := func(t *testing.T, closes []float64) {
		flags, err := GoldenCrossAt(closes, ShortMA, LongMA)
		require.NoError(t, err)
		for i := 1; i < len(closes); i++ {
			want := false
			if i >= LongMA {
				prevFast, _ := CalculateSMA(closes[:i], ShortMA)
				prevSlow, _ := CalculateSMA(closes[:i], LongMA)
				fast, _ := CalculateSMA(closes[:i+1], ShortMA)
				slow, _ := CalculateSMA(closes[:i+1], LongMA)
				want = prevFast <= prevSlow && fast > slow
			}
			assert.Equal(t, want, flags[i], "bar %d", i)
		}
	}

	t.Run("rising", func(t *testing.T) {
		closes := linear(60, 100, 1)
		check(t, closes)
		flags, _ := GoldenCrossAt(closes, ShortMA, LongMA)
		assert.NotContains(t, flags, true)
	})
	t.Run("falling", func(t *testing.T) {
		closes := linear(60, 200, -1)
		check(t, closes)
		flags, _ := GoldenCrossAt(closes, ShortMA, LongMA)
		assert.NotContains(t, flags, true)
	})
	for seed := int64(1); seed <= 25; seed++ {
		check(t, oscillating(120, seed))
	}
}

func crossAt30() []float64 {
	closes := linear(30, 100, -1)
	return append(closes, 200, 201, 202)
}

func TestCalculateGoldenCross_LastTwoBarsOnly(t *testing.T) {
	closes := crossAt30()

	gc, err := CalculateGoldenCross(closes[:31], ShortMA, LongMA)
	require.NoError(t, err)
	assert.True(t, gc)

	// The cross happened one bar earlier, so it is not reported.
	gc, err = CalculateGoldenCross(closes[:32], ShortMA, LongMA)
	require.NoError(t, err)
	assert.False(t, gc)

	flags, err := GoldenCrossAt(closes, ShortMA, LongMA)
	require.NoError(t, err)
	for i, f := range flags {
		assert.Equal(t, i == 30, f, "bar %d", i)
	}
}

func TestCalculateMACD(t *testing.T) {
	flat := linear(40, 100, 0)
	m, err := CalculateMACD(flat, MACDFast, MACDSlow, MACDSignal)
	require.NoError(t, err)
	last := len(flat) - 1
	assert.InDelta(t, 0, m.Line[last], 1e-9)
	assert.InDelta(t, 0, m.Signal[last], 1e-9)
	assert.True(t, math.IsNaN(m.Signal[MACDSlow+MACDSignal-3]))
	assert.False(t, math.IsNaN(m.Signal[MACDSlow+MACDSignal-2]))

	for seed := int64(1); seed <= 10; seed++ {
		closes := oscillating(100, seed)
		m, err := CalculateMACD(closes, MACDFast, MACDSlow, MACDSignal)
		require.NoError(t, err)
		n := len(closes) - 1
		want := m.Line[n-1] <= m.Signal[n-1] && m.Line[n] > m.Signal[n]
		assert.Equal(t, want, m.BuyCross())
	}

	_, err = CalculateMACD(linear(33, 100, 1), MACDFast, MACDSlow, MACDSignal)
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)
}

func TestCalculateBollinger(t *testing.T) {
	b, err := CalculateBollinger([]float64{1, 3}, 2, 2)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, b.Middle, 1e-12)
	assert.InDelta(t, 4.0, b.Upper, 1e-12)
	assert.InDelta(t, 0.0, b.Lower, 1e-12)
	assert.True(t, b.Oversold(0))
	assert.False(t, b.Oversold(0.5))
}

func TestRatios(t *testing.T) {
	vr, err := CalculateVolumeRatio([]float64{999, 10, 10, 10, 10, 10, 20}, VolumeWindow)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, vr, 1e-12)

	vr, err = CalculateVolumeRatio([]float64{0, 0, 0, 0, 0, 20}, VolumeWindow)
	require.NoError(t, err)
	assert.Equal(t, 0.0, vr)

	ch, err := CalculateChangePct([]float64{100, 103})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, ch, 1e-12)

	dev, err := CalculateDeviationPct(95, 100)
	require.NoError(t, err)
	assert.InDelta(t, -5.0, dev, 1e-12)
}

func TestSnapshot(t *testing.T) {
	assert.Equal(t, 35, MinSnapshotBars)

	_, err := Snapshot(seriesFrom(oscillating(MinSnapshotBars-1, 3)))
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)

	snap, err := Snapshot(seriesFrom(oscillating(MinSnapshotBars, 3)))
	require.NoError(t, err)
	assert.False(t, math.IsNaN(snap.MACDSignal))
	assert.GreaterOrEqual(t, snap.RSI, 0.0)
	assert.LessOrEqual(t, snap.RSI, 100.0)
}

func TestSnapshot_GoldenCross(t *testing.T) {
	closes := append(linear(10, 130, 0), crossAt30()[:31]...)
	snap, err := Snapshot(seriesFrom(closes))
	require.NoError(t, err)
	assert.True(t, snap.GoldenCross)
	assert.InDelta(t, 200.0, snap.Price, 1e-12)
}

func TestSnapshot_Idempotent(t *testing.T) {
	series := seriesFrom(oscillating(100, 11))
	a, err := Snapshot(series)
	require.NoError(t, err)
	b, err := Snapshot(series)
	require.NoError(t, err)
	assert.Equal(t, *a, *b)
	assert.Equal(t, math.Float64bits(a.MACD), math.Float64bits(b.MACD))
	assert.Equal(t, math.Float64bits(a.RSI), math.Float64bits(b.RSI))
}
