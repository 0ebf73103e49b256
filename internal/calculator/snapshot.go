package calculator

import (
	"fmt"

	"SignalScanner/internal/model"
)

// Indicator windows used by Snapshot.
const (
	ShortMA      = 5
	LongMA       = 25
	RSIPeriod    = 14
	MACDFast     = 12
	MACDSlow     = 26
	MACDSignal   = 9
	BollingerLen = 20
	BollingerK   = 2.0
	VolumeWindow = 5
)

// MinSnapshotBars is the shortest series for which every indicator in a
// snapshot is defined, including the previous-bar values the cross tests need.
var MinSnapshotBars = max(
	MinMACDBars(MACDSlow, MACDSignal),
	LongMA+1,
	RSIPeriod+1,
	BollingerLen,
	VolumeWindow+1,
)

// Snapshot computes every indicator at the last bar of the series. It either
// populates the whole snapshot or fails; a partial snapshot is never returned.
func Snapshot(series *model.PriceSeries) (*model.IndicatorSnapshot, error) {
	if series.Len() < MinSnapshotBars {
		return nil, insufficient("snapshot", MinSnapshotBars, series.Len())
	}
	closes := series.Closes()
	volumes := series.Volumes()
	price := closes[len(closes)-1]

	change, err := CalculateChangePct(closes)
	if err != nil {
		return nil, fmt.Errorf("change: %w", err)
	}
	volRatio, err := CalculateVolumeRatio(volumes, VolumeWindow)
	if err != nil {
		return nil, fmt.Errorf("volume ratio: %w", err)
	}
	ma5, err := CalculateSMA(closes, ShortMA)
	if err != nil {
		return nil, fmt.Errorf("MA%d: %w", ShortMA, err)
	}
	ma25, err := CalculateSMA(closes, LongMA)
	if err != nil {
		return nil, fmt.Errorf("MA%d: %w", LongMA, err)
	}
	deviation, err := CalculateDeviationPct(price, ma25)
	if err != nil {
		return nil, fmt.Errorf("deviation: %w", err)
	}
	rsi, err := CalculateRSI(closes, RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("RSI: %w", err)
	}
	macd, err := CalculateMACD(closes, MACDFast, MACDSlow, MACDSignal)
	if err != nil {
		return nil, fmt.Errorf("MACD: %w", err)
	}
	bands, err := CalculateBollinger(closes, BollingerLen, BollingerK)
	if err != nil {
		return nil, fmt.Errorf("bollinger: %w", err)
	}
	gc, err := CalculateGoldenCross(closes, ShortMA, LongMA)
	if err != nil {
		return nil, fmt.Errorf("golden cross: %w", err)
	}

	last := len(closes) - 1
	return &model.IndicatorSnapshot{
		Price:        price,
		ChangePct:    change,
		VolumeRatio:  volRatio,
		MA5:          ma5,
		MA25:         ma25,
		DeviationPct: deviation,
		RSI:          rsi,
		MACD:         macd.Line[last],
		MACDSignal:   macd.Signal[last],
		BBMiddle:     bands.Middle,
		BBUpper:      bands.Upper,
		BBLower:      bands.Lower,
		GoldenCross:  gc,
		MACDBuy:      macd.BuyCross(),
		BBOversold:   bands.Oversold(price),
	}, nil
}
