package collector

import (
	"context"
	"fmt"
	"time"

	"SignalScanner/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Series    map[string][]model.OHLCV
	Companies map[string]model.Company
	News      map[string][]model.Headline
	// Fail lists symbols whose history fetch fails.
	Fail map[string]bool
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, symbol string, _ time.Duration) (*model.PriceSeries, error) {
	if m.Fail[symbol] {
		return nil, unavailable(m.Name(), symbol, fmt.Errorf("simulated failure"))
	}
	bars, ok := m.Series[symbol]
	if !ok {
		return nil, unavailable(m.Name(), symbol, fmt.Errorf("unknown symbol"))
	}
	return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}, nil
}

func (m *MockFetcher) FetchCompany(_ context.Context, symbol string) (model.Company, error) {
	c, ok := m.Companies[symbol]
	if !ok {
		return model.Company{}, unavailable(m.Name(), symbol, fmt.Errorf("no fundamentals"))
	}
	if c.Symbol == "" {
		c.Symbol = symbol
	}
	return c, nil
}

func (m *MockFetcher) FetchNews(_ context.Context, symbol string) ([]model.Headline, error) {
	return m.News[symbol], nil
}

// GenerateBars builds one daily bar per close, oldest first, ending
// yesterday. Volume is constant unless overridden by volumes.
func GenerateBars(closes []float64, volumes ...float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	end := time.Now().Truncate(24 * time.Hour)
	for i, c := range closes {
		vol := 1000000.0
		if i < len(volumes) {
			vol = volumes[i]
		}
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(len(closes) - i)),
			Open:   c * 0.999,
			High:   c * 1.005,
			Low:    c * 0.995,
			Close:  c,
			Volume: vol,
		}
	}
	return bars
}
