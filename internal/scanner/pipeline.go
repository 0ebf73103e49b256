// Package scanner runs the per-ticker screening loop and filters its output.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"SignalScanner/internal/collector"
	"SignalScanner/internal/metrics"
	"SignalScanner/internal/model"
	"SignalScanner/internal/sentiment"
	"SignalScanner/internal/strategy"
	"SignalScanner/internal/tickers"
)

const (
	summaryRunes   = 300
	defaultSummary = "特徴データなし"
)

// Source collects the data of one ticker.
type Source interface {
	Collect(ctx context.Context, symbol string) (*collector.Bundle, error)
}

// Skip records a ticker left out of a scan.
type Skip struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// Report is the unfiltered outcome of one scan pass.
type Report struct {
	RunID    string             `json:"run_id"`
	Started  time.Time          `json:"started"`
	Duration time.Duration      `json:"duration"`
	Records  []model.ScanRecord `json:"records"`
	Skipped  []Skip             `json:"skipped,omitempty"`
}

// Scanner evaluates a ticker list.
type Scanner struct {
	Source  Source
	Metrics *metrics.Scan
}

// New creates a Scanner. m may be nil.
func New(src Source, m *metrics.Scan) *Scanner {
	return &Scanner{Source: src, Metrics: m}
}

// Run processes symbols sequentially. Per-ticker failures are logged and
// recorded in Report.Skipped; only context cancellation stops the batch.
func (s *Scanner) Run(ctx context.Context, symbols []string) (*Report, error) {
	if len(symbols) == 0 {
		return nil, tickers.ErrNoTickers
	}
	report := &Report{RunID: uuid.NewString(), Started: time.Now()}
	entry := log.WithField("run_id", report.RunID)
	entry.Infof("scan started: %d tickers", len(symbols))

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		b, err := s.Source.Collect(ctx, symbol)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			outcome := outcomeOf(err)
			entry.WithField("symbol", symbol).Warnf("skipped (%s): %v", outcome, err)
			s.Metrics.Ticker(outcome)
			report.Skipped = append(report.Skipped, Skip{Symbol: symbol, Reason: err.Error()})
			continue
		}
		rec := Record(symbol, b)
		s.Metrics.Ticker(metrics.OutcomeOK)
		s.Metrics.Label(rec.Label.Code())
		report.Records = append(report.Records, rec)
	}

	report.Duration = time.Since(report.Started)
	s.Metrics.Run("scan", report.Duration)
	entry.Infof("scan finished: %d records, %d skipped in %s",
		len(report.Records), len(report.Skipped), report.Duration.Round(time.Millisecond))
	return report, nil
}

// Record merges one collected bundle into a scan record.
func Record(symbol string, b *collector.Bundle) model.ScanRecord {
	label, fs := strategy.Evaluate(b.Indicators, b.Company)
	name := b.Company.DisplayName()
	if name == "" {
		name = symbol
	}
	return model.ScanRecord{
		Symbol:       symbol,
		Name:         name,
		Sector:       b.Company.Sector,
		Summary:      Summarize(b.Company.BusinessSummary),
		Indicators:   *b.Indicators,
		Fundamentals: fs,
		Sentiment:    sentiment.Tag(sentiment.Titles(b.Headlines)),
		Label:        label,
	}
}

// Summarize truncates a business summary to its first 300 runes.
func Summarize(s string) string {
	if s == "" {
		return defaultSummary
	}
	r := []rune(s)
	if len(r) <= summaryRunes {
		return s
	}
	return string(r[:summaryRunes]) + "..."
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, model.ErrInsufficientHistory):
		return metrics.OutcomeInsufficientHistory
	case errors.Is(err, model.ErrProviderUnavailable):
		return metrics.OutcomeProviderUnavailable
	default:
		return metrics.OutcomeError
	}
}

// Scan runs a scan and selects its matches in one call.
func (s *Scanner) Scan(ctx context.Context, symbols []string, cfg FilterConfig, grouped bool) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConfigurationMissing, err)
	}
	report, err := s.Run(ctx, symbols)
	if err != nil {
		return nil, err
	}
	return Select(report, cfg, grouped), nil
}
