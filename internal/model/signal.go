package model

import "encoding/json"

// CompositeLabel is the ranked verdict combining technical signals.
// Lower values sort first.
type CompositeLabel int

const (
	LabelStrongestBuy CompositeLabel = iota
	LabelGoldenCross
	LabelMACDBuy
	LabelOversold
	LabelNone
)

var labelNames = map[CompositeLabel]string{
	LabelStrongestBuy: "最強買い",
	LabelGoldenCross:  "GC",
	LabelMACDBuy:      "MACD買い",
	LabelOversold:     "売られすぎ",
	LabelNone:         "",
}

// Rank returns the sort precedence of the label.
func (l CompositeLabel) Rank() int { return int(l) }

// String returns the short display string of the label.
func (l CompositeLabel) String() string { return labelNames[l] }

// Code returns a stable machine-readable name.
func (l CompositeLabel) Code() string {
	switch l {
	case LabelStrongestBuy:
		return "STRONGEST_BUY"
	case LabelGoldenCross:
		return "GOLDEN_CROSS"
	case LabelMACDBuy:
		return "MACD_BUY"
	case LabelOversold:
		return "OVERSOLD"
	default:
		return "NONE"
	}
}

func (l CompositeLabel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Code())
}

// Polarity is the headline sentiment direction.
type Polarity string

const (
	PolarityPositive Polarity = "POSITIVE"
	PolarityNegative Polarity = "NEGATIVE"
	PolarityNeutral  Polarity = "NEUTRAL"
)

// SentimentVerdict is the outcome of keyword tagging over recent headlines.
type SentimentVerdict struct {
	Polarity Polarity `json:"polarity"`
	Score    int      `json:"score"`
	Matched  []string `json:"matched,omitempty"`
	NoData   bool     `json:"no_data"`
}

// ScanRecord is one ticker's merged result for a single scan pass.
type ScanRecord struct {
	Symbol       string              `json:"symbol"`
	Name         string              `json:"name"`
	Sector       string              `json:"sector,omitempty"`
	Summary      string              `json:"summary,omitempty"`
	Indicators   IndicatorSnapshot   `json:"indicators"`
	Fundamentals FundamentalSnapshot `json:"fundamentals"`
	Sentiment    SentimentVerdict    `json:"sentiment"`
	Label        CompositeLabel      `json:"label"`
}
