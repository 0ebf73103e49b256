package scanner

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"SignalScanner/internal/model"
)

// Mode selects the screening rule set.
type Mode string

const (
	ModeMomentum Mode = "momentum"
	ModeDip      Mode = "dip"
)

// DipPolicy selects how Dip mode combines its conditions.
type DipPolicy string

const (
	// DipStrict requires RSI <= MaxRSI and DeviationPct <= MinDeviation.
	DipStrict DipPolicy = "strict"
	// DipLoose accepts RSI <= MaxRSI or a close at or under the lower band.
	DipLoose DipPolicy = "loose"
)

// UnknownSector groups records without a sector.
const UnknownSector = "Unknown"

var validate = validator.New()

// FilterConfig holds the screening thresholds for one scan.
type FilterConfig struct {
	Mode              Mode      `yaml:"mode" json:"mode" validate:"required,oneof=momentum dip"`
	MinChange         float64   `yaml:"min_change" json:"min_change" validate:"gte=-100,lte=100"`
	MinVolume         float64   `yaml:"min_volume" json:"min_volume" validate:"gte=0"`
	MaxRSI            float64   `yaml:"max_rsi" json:"max_rsi" validate:"gte=0,lte=100"`
	MinDeviation      float64   `yaml:"min_deviation" json:"min_deviation" validate:"gte=-100,lte=100"`
	FundamentalFilter bool      `yaml:"fundamental_filter" json:"fundamental_filter"`
	MinSafety         int       `yaml:"min_safety" json:"min_safety" validate:"gte=0,lte=100"`
	MinDividend       float64   `yaml:"min_dividend" json:"min_dividend" validate:"gte=0"`
	DipPolicy         DipPolicy `yaml:"dip_policy" json:"dip_policy" validate:"omitempty,oneof=strict loose"`
}

// DefaultFilterConfig returns the default thresholds for mode.
func DefaultFilterConfig(mode Mode) FilterConfig {
	return FilterConfig{
		Mode:         mode,
		MinChange:    3.0,
		MinVolume:    1.5,
		MaxRSI:       30,
		MinDeviation: -5,
		MinSafety:    50,
		MinDividend:  3.0,
		DipPolicy:    DipStrict,
	}
}

// Validate checks the thresholds.
func (c FilterConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("filter config: %w", err)
	}
	return nil
}

// Match reports whether one record passes the filter.
func (c FilterConfig) Match(r model.ScanRecord) bool {
	ind := r.Indicators
	var ok bool
	switch c.Mode {
	case ModeMomentum:
		ok = ind.ChangePct >= c.MinChange && ind.VolumeRatio >= c.MinVolume
	case ModeDip:
		if c.DipPolicy == DipLoose {
			ok = ind.RSI <= c.MaxRSI || ind.BBOversold
		} else {
			ok = ind.RSI <= c.MaxRSI && ind.DeviationPct <= c.MinDeviation
		}
	}
	if !ok {
		return false
	}
	if c.FundamentalFilter {
		f := r.Fundamentals
		return f.SafetyScore >= c.MinSafety && f.DividendYield >= c.MinDividend
	}
	return true
}

// Filter returns the records passing cfg, in input order. The input is not modified.
func Filter(records []model.ScanRecord, cfg FilterConfig) []model.ScanRecord {
	out := make([]model.ScanRecord, 0, len(records))
	for _, r := range records {
		if cfg.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Sort orders records by label rank, then by the mode's primary metric:
// ChangePct descending for Momentum, DeviationPct ascending for Dip.
// Ties fall back to the symbol.
func Sort(records []model.ScanRecord, mode Mode) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if ra, rb := a.Label.Rank(), b.Label.Rank(); ra != rb {
			return ra < rb
		}
		switch mode {
		case ModeDip:
			if a.Indicators.DeviationPct != b.Indicators.DeviationPct {
				return a.Indicators.DeviationPct < b.Indicators.DeviationPct
			}
		default:
			if a.Indicators.ChangePct != b.Indicators.ChangePct {
				return a.Indicators.ChangePct > b.Indicators.ChangePct
			}
		}
		return a.Symbol < b.Symbol
	})
}

// Group is the records of one sector.
type Group struct {
	Sector  string             `json:"sector"`
	Records []model.ScanRecord `json:"records"`
}

// GroupBySector partitions records by sector, keeping sectors in order of
// first appearance and records in input order.
func GroupBySector(records []model.ScanRecord) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, r := range records {
		sector := r.Sector
		if sector == "" {
			sector = UnknownSector
		}
		i, ok := index[sector]
		if !ok {
			i = len(groups)
			index[sector] = i
			groups = append(groups, Group{Sector: sector})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// Result is the filtered, ordered output of a scan.
type Result struct {
	RunID     string             `json:"run_id"`
	Filter    FilterConfig       `json:"filter"`
	Records   []model.ScanRecord `json:"records"`
	Groups    []Group            `json:"groups,omitempty"`
	Skipped   []Skip             `json:"skipped,omitempty"`
	NoMatches bool               `json:"no_matches"`
}

// Select filters and sorts the records of a report. Groups are filled when grouped is set.
func Select(report *Report, cfg FilterConfig, grouped bool) *Result {
	records := Filter(report.Records, cfg)
	Sort(records, cfg.Mode)
	res := &Result{
		RunID:     report.RunID,
		Filter:    cfg,
		Records:   records,
		Skipped:   report.Skipped,
		NoMatches: len(records) == 0,
	}
	if grouped {
		res.Groups = GroupBySector(records)
	}
	return res
}

// AlertRule selects records for the unattended alert.
type AlertRule struct {
	MinChange float64 `yaml:"min_change" validate:"gte=-100,lte=100"`
}

// DefaultAlertRule returns the alert rule used by the daily monitor.
func DefaultAlertRule() AlertRule {
	return AlertRule{MinChange: 3.5}
}

// Matches reports whether a record should be alerted on.
func (a AlertRule) Matches(r model.ScanRecord) bool {
	return r.Indicators.ChangePct >= a.MinChange || r.Indicators.GoldenCross
}

// Hits returns the alerted records ordered as for Momentum.
func (a AlertRule) Hits(records []model.ScanRecord) []model.ScanRecord {
	var out []model.ScanRecord
	for _, r := range records {
		if a.Matches(r) {
			out = append(out, r)
		}
	}
	Sort(out, ModeMomentum)
	return out
}
