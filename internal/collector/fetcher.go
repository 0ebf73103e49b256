package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/xhit/go-str2duration/v2"

	"SignalScanner/internal/model"
)

// Fetcher defines the interface for fetching market data for one ticker.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, lookback time.Duration) (*model.PriceSeries, error)
	FetchCompany(ctx context.Context, symbol string) (model.Company, error)
	FetchNews(ctx context.Context, symbol string) ([]model.Headline, error)
	Name() string
}

// Standard lookback windows in calendar days.
const (
	LookbackShort    = "60d"
	LookbackDefault  = "100d"
	LookbackBacktest = "730d"
)

// ParseLookback parses a calendar window such as "60d" or "2w".
func ParseLookback(s string) (time.Duration, error) {
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse lookback %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("lookback %q must be positive", s)
	}
	return d, nil
}

func unavailable(source, symbol string, err error) error {
	return fmt.Errorf("%s %s: %w: %v", source, symbol, model.ErrProviderUnavailable, err)
}
