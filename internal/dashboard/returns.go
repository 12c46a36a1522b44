package dashboard

import (
	"slices"

	"sp500dash/internal/domain"
)

// ReturnRecord is the daily percentage change of one symbol. ReturnPct is nil
// for the symbol's first date in the view and when the previous close is 0.
type ReturnRecord struct {
	Symbol    string      `json:"symbol"`
	Date      domain.Date `json:"date"`
	Sector    string      `json:"sector"`
	ReturnPct *float64    `json:"return_pct"`
}

// ComputeReturns derives per-symbol daily returns over the view. Returns are
// taken between consecutive rows of the view, so a gap created by the filter
// spans the gap. k rows of a symbol with positive closes yield max(0, k-1)
// defined returns; a return after a zero close is nil.
func ComputeReturns(v View) []ReturnRecord {
	sorted := slices.Clone(v)
	slices.SortStableFunc(sorted, compareSymbolDate)

	out := make([]ReturnRecord, 0, len(sorted))
	for i, r := range sorted {
		rr := ReturnRecord{Symbol: r.Symbol, Date: r.Date, Sector: r.Sector}
		if i > 0 && sorted[i-1].Symbol == r.Symbol {
			if prev := sorted[i-1].Close; prev != 0 {
				pct := (r.Close - prev) / prev * 100
				rr.ReturnPct = &pct
			}
		}
		out = append(out, rr)
	}
	return out
}

func definedReturn(r ReturnRecord) (float64, bool) {
	if r.ReturnPct == nil {
		return 0, false
	}
	return *r.ReturnPct, true
}
