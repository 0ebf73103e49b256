package strategy

import (
	"math"

	"SignalScanner/internal/model"
)

// Safety thresholds. Each satisfied rule adds SafetyPoints.
const (
	SafetyPoints     = 25
	MaxTrailingPE    = 15.0
	MaxPriceToBook   = 1.2
	MinEquityRatio   = 40.0 // percent
	MinDividendYield = 3.0  // percent
)

// SafetyScore scores valuation and balance-sheet health on 0/25/50/75/100.
// A zero value means "unavailable" and never satisfies its rule.
func SafetyScore(pe, pb, equityRatio, dividendYield float64) int {
	score := 0
	if pe > 0 && pe < MaxTrailingPE {
		score += SafetyPoints
	}
	if pb > 0 && pb < MaxPriceToBook {
		score += SafetyPoints
	}
	if equityRatio > MinEquityRatio {
		score += SafetyPoints
	}
	if dividendYield > MinDividendYield {
		score += SafetyPoints
	}
	return score
}

// EquityRatio returns equity / total assets in percent, or 0 when total assets are unknown.
func EquityRatio(equity, totalAssets float64) float64 {
	if totalAssets <= 0 {
		return 0
	}
	return equity / totalAssets * 100
}

// Fundamentals resolves the provider bundle into a scored snapshot.
func Fundamentals(c model.Company) model.FundamentalSnapshot {
	fs := model.FundamentalSnapshot{
		TrailingPE:    finite(c.TrailingPE),
		PriceToBook:   finite(c.PriceToBook),
		DividendYield: finite(c.DividendYield),
		EquityRatio:   finite(EquityRatio(c.Equity, c.TotalAssets)),
		Missing:       c.Missing,
	}
	fs.SafetyScore = SafetyScore(fs.TrailingPE, fs.PriceToBook, fs.EquityRatio, fs.DividendYield)
	return fs
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
