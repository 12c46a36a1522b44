package dashboard

import (
	"sort"

	"sp500dash/internal/domain"
)

// LatestRow is the most recent record of a symbol within a view.
type LatestRow struct {
	Symbol string      `json:"symbol"`
	Sector string      `json:"sector"`
	Close  float64     `json:"close"`
	Volume int64       `json:"volume"`
	Date   domain.Date `json:"date"`
}

// LatestPerSymbol keeps, per symbol, the row with the greatest date (the first
// one seen on a tie) and sorts the result by Close descending, then Symbol.
func LatestPerSymbol(v View) []LatestRow {
	latest := make(map[string]int, len(v))
	for i := range v {
		j, ok := latest[v[i].Symbol]
		if !ok || v[i].Date.After(v[j].Date) {
			latest[v[i].Symbol] = i
		}
	}

	rows := make([]LatestRow, 0, len(latest))
	for _, i := range latest {
		r := v[i]
		rows = append(rows, LatestRow{
			Symbol: r.Symbol,
			Sector: r.Sector,
			Close:  r.Close,
			Volume: r.Volume,
			Date:   r.Date,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Close != rows[j].Close {
			return rows[i].Close > rows[j].Close
		}
		return rows[i].Symbol < rows[j].Symbol
	})
	return rows
}
