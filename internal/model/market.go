package model

import "time"

// OHLCV represents a single daily bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the chronological daily bars of one ticker for a scan pass.
// It is treated as immutable once fetched.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// Closes returns a fresh slice of closing prices.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Volumes returns a fresh slice of volumes.
func (s *PriceSeries) Volumes() []float64 {
	vols := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		vols[i] = b.Volume
	}
	return vols
}

// Company is the fundamentals bundle returned by a provider. Fields the
// provider could not supply stay at their zero value.
type Company struct {
	Symbol          string
	ShortName       string
	LongName        string
	Sector          string
	BusinessSummary string
	TrailingPE      float64
	PriceToBook     float64
	DividendYield   float64 // percent
	Equity          float64
	TotalAssets     float64

	// Missing lists the fields the provider did not return.
	Missing []string
}

// DisplayName prefers the short name, then the long name, then the symbol.
func (c Company) DisplayName() string {
	switch {
	case c.ShortName != "":
		return c.ShortName
	case c.LongName != "":
		return c.LongName
	default:
		return c.Symbol
	}
}

// Headline is one news item. Only Title is consumed by the tagger.
type Headline struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}
