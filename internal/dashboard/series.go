package dashboard

import (
	"slices"

	"sp500dash/internal/domain"
)

// Point is one (date, close) observation of a price line.
type Point struct {
	Date  domain.Date `json:"date"`
	Close float64     `json:"close"`
}

// PriceSeries is the close-price line of one symbol.
type PriceSeries struct {
	Symbol string  `json:"symbol"`
	Sector string  `json:"sector"`
	Points []Point `json:"points"`
}

// PriceSeriesBySymbol groups the view into date-sorted close lines, one per
// symbol, ordered by symbol.
func PriceSeriesBySymbol(v View) []PriceSeries {
	sorted := slices.Clone(v)
	slices.SortStableFunc(sorted, compareSymbolDate)

	out := []PriceSeries{}
	for i, r := range sorted {
		if i == 0 || sorted[i-1].Symbol != r.Symbol {
			out = append(out, PriceSeries{Symbol: r.Symbol, Sector: r.Sector})
		}
		last := &out[len(out)-1]
		last.Points = append(last.Points, Point{Date: r.Date, Close: r.Close})
	}
	return out
}
