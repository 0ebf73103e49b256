// Package export writes scan results to spreadsheet files.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"SignalScanner/internal/scanner"
)

// Sheet names.
const (
	SheetScan    = "Scan"
	SheetSkipped = "Skipped"
)

var scanHeader = []interface{}{
	"Label", "Symbol", "Name", "Sector", "Price", "Change %", "Volume ratio",
	"MA5", "MA25", "Deviation %", "RSI", "MACD", "MACD signal",
	"BB lower", "BB upper", "Safety", "PER", "PBR", "Dividend %", "Equity ratio %",
	"Sentiment", "Sentiment score", "Summary",
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// WriteXLSX renders the result as a workbook: one row per record on the
// Scan sheet, skipped tickers on the Skipped sheet.
func WriteXLSX(w io.Writer, res *scanner.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetScan); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeRow(f, SheetScan, 1, scanHeader); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(scanHeader), 1)
	if err := f.SetCellStyle(SheetScan, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range res.Records {
		ind, fs := r.Indicators, r.Fundamentals
		label := r.Label.String()
		if label == "" {
			label = "-"
		}
		row := []interface{}{
			label, r.Symbol, r.Name, r.Sector,
			round(ind.Price, 1), round(ind.ChangePct, 2), round(ind.VolumeRatio, 2),
			round(ind.MA5, 2), round(ind.MA25, 2), round(ind.DeviationPct, 2), round(ind.RSI, 1),
			round(ind.MACD, 3), round(ind.MACDSignal, 3), round(ind.BBLower, 2), round(ind.BBUpper, 2),
			fs.SafetyScore, round(fs.TrailingPE, 2), round(fs.PriceToBook, 2),
			round(fs.DividendYield, 2), round(fs.EquityRatio, 1),
			string(r.Sentiment.Polarity), r.Sentiment.Score, r.Summary,
		}
		if err := writeRow(f, SheetScan, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetScan, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if len(res.Skipped) > 0 {
		if _, err := f.NewSheet(SheetSkipped); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		if err := writeRow(f, SheetSkipped, 1, []interface{}{"Symbol", "Reason"}); err != nil {
			return err
		}
		for i, s := range res.Skipped {
			if err := writeRow(f, SheetSkipped, i+2, []interface{}{s.Symbol, s.Reason}); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
