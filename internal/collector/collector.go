package collector

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"SignalScanner/internal/calculator"
	"SignalScanner/internal/model"
	"SignalScanner/internal/sentiment"
)

// Bundle is everything collected for one ticker in a scan pass.
type Bundle struct {
	Series     *model.PriceSeries
	Indicators *model.IndicatorSnapshot
	Company    model.Company
	Headlines  []model.Headline
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher  Fetcher
	Lookback time.Duration
	limiter  *rate.Limiter
}

// NewCollector creates a Collector that issues at most rps provider calls per second.
func NewCollector(fetcher Fetcher, lookback time.Duration, rps float64) *Collector {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Collector{Fetcher: fetcher, Lookback: lookback, limiter: rate.NewLimiter(limit, 1)}
}

// History fetches the price series of one ticker over the given window.
func (c *Collector) History(ctx context.Context, symbol string, lookback time.Duration) (*model.PriceSeries, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	series, err := c.Fetcher.FetchHistory(ctx, symbol, lookback)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return series, nil
}

// Collect fetches one ticker and computes its indicator snapshot. A missing
// or short price series fails the ticker; missing fundamentals or news only
// degrade the bundle.
func (c *Collector) Collect(ctx context.Context, symbol string) (*Bundle, error) {
	series, err := c.History(ctx, symbol, c.Lookback)
	if err != nil {
		return nil, err
	}
	ind, err := calculator.Snapshot(series)
	if err != nil {
		return nil, fmt.Errorf("indicators: %w", err)
	}

	b := &Bundle{Series: series, Indicators: ind, Company: model.Company{Symbol: symbol}}
	entry := log.WithFields(log.Fields{"symbol": symbol, "source": c.Fetcher.Name()})

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if company, err := c.Fetcher.FetchCompany(ctx, symbol); err != nil {
		entry.Warnf("fundamentals unavailable, using defaults: %v", err)
		b.Company.Missing = []string{"all"}
	} else {
		b.Company = company
		if len(company.Missing) > 0 {
			entry.Debugf("fundamental fields defaulted: %v", company.Missing)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if news, err := c.Fetcher.FetchNews(ctx, symbol); err != nil {
		entry.Warnf("news unavailable: %v", err)
	} else {
		if len(news) > sentiment.MaxHeadlines {
			news = news[:sentiment.MaxHeadlines]
		}
		b.Headlines = news
	}
	return b, nil
}
