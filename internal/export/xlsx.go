// Package export writes a dashboard bundle as an Excel workbook, one sheet
// per view.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sp500dash/internal/dashboard"
)

// Sheet names, in workbook order.
const (
	SheetSummary    = "Summary"
	SheetLatest     = "Latest"
	SheetSectors    = "Sectors"
	SheetVolatility = "Volatility"
	SheetReturns    = "Sector Returns"
	SheetPrices     = "Top Prices"
	SheetVolume     = "Top Volume"
)

// ContentType is the MIME type of the written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

// WriteWorkbook renders b as an xlsx workbook to w. Undefined statistics are
// left as empty cells.
func WriteWorkbook(w io.Writer, b dashboard.Bundle) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	sheets := buildSheets(b)
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, bold); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
		return fmt.Errorf("writing %s header: %w", s.name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", s.name, err)
	}
	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", s.name, i+1, err)
		}
	}
	return nil
}

func buildSheets(b dashboard.Bundle) []sheet {
	summary := sheet{name: SheetSummary, header: []any{"Metric", "Value"}}
	cards := b.Summary.Cards()
	summary.rows = [][]any{
		{"Symbols", cards[0]},
		{"Average price", cards[1]},
		{"Max price", cards[2]},
		{"Min price", cards[3]},
	}
	for _, line := range b.Stats.Lines {
		summary.rows = append(summary.rows, []any{line, nil})
	}

	latest := sheet{name: SheetLatest, header: []any{"Symbol", "Sector", "Close", "Volume", "Date"}}
	for _, r := range b.Latest {
		latest.rows = append(latest.rows, []any{r.Symbol, r.Sector, r.Close, r.Volume, r.Date.String()})
	}

	sectors := sheet{name: SheetSectors, header: []any{"Sector", "Rows"}}
	for _, s := range b.Sectors {
		sectors.rows = append(sectors.rows, []any{s.Sector, s.Count})
	}

	vol := sheet{name: SheetVolatility, header: []any{"Sector", "Volatility (%)", "Observations"}}
	for _, s := range b.Volatility {
		vol.rows = append(vol.rows, []any{s.Sector, optional(s.Volatility), s.Observations})
	}

	rets := sheet{name: SheetReturns, header: []any{"Sector", "Mean return (%)", "Observations"}}
	for _, s := range b.SectorReturns {
		rets.rows = append(rets.rows, []any{s.Sector, s.MeanReturn, s.Observations})
	}

	return []sheet{
		summary, latest, sectors, vol, rets,
		rankSheet(SheetPrices, "Avg close", b.PriceComparison),
		rankSheet(SheetVolume, "Avg volume (M)", b.Volume),
	}
}

func rankSheet(name, avgLabel string, entries []dashboard.RankEntry) sheet {
	s := sheet{name: name, header: []any{"Symbol", avgLabel, "Min", "Max", "Band low", "Band high"}}
	for _, e := range entries {
		s.rows = append(s.rows, []any{e.Symbol, e.Avg, e.Min, e.Max, e.BandLow, e.BandHigh})
	}
	return s
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
