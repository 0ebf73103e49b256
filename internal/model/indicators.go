package model

// IndicatorSnapshot holds the technical indicators of one ticker at its most recent bar.
type IndicatorSnapshot struct {
	Price        float64 `json:"price"`
	ChangePct    float64 `json:"change_pct"`
	VolumeRatio  float64 `json:"volume_ratio"`
	MA5          float64 `json:"ma5"`
	MA25         float64 `json:"ma25"`
	DeviationPct float64 `json:"deviation_pct"` // vs MA25
	RSI          float64 `json:"rsi"`           // 0 ~ 100
	MACD         float64 `json:"macd"`
	MACDSignal   float64 `json:"macd_signal"`
	BBMiddle     float64 `json:"bb_middle"`
	BBUpper      float64 `json:"bb_upper"`
	BBLower      float64 `json:"bb_lower"`

	GoldenCross bool `json:"golden_cross"`
	MACDBuy     bool `json:"macd_buy"`
	BBOversold  bool `json:"bb_oversold"`
}

// FundamentalSnapshot holds the valuation and balance-sheet scalars and the
// derived safety score.
type FundamentalSnapshot struct {
	TrailingPE    float64 `json:"trailing_pe"`
	PriceToBook   float64 `json:"price_to_book"`
	DividendYield float64 `json:"dividend_yield"` // percent
	EquityRatio   float64 `json:"equity_ratio"`   // percent
	SafetyScore   int     `json:"safety_score"`   // 0, 25, 50, 75 or 100

	// Missing names the fields that were defaulted because the provider lacked them.
	Missing []string `json:"missing,omitempty"`
}
