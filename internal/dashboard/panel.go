// Package dashboard implements the filtering-and-aggregation engine behind
// the basket dashboard: an immutable panel of daily records, the filter that
// narrows it, and the analytical views computed over each filtered view.
package dashboard

import (
	"slices"
	"strings"

	"sp500dash/internal/domain"
)

// UnknownSector is stamped on records whose symbol has no sector mapping.
const UnknownSector = "Unknown"

// Record is one trading day for one symbol, stamped with its sector.
type Record struct {
	Symbol string      `json:"symbol"`
	Date   domain.Date `json:"date"`
	Open   float64     `json:"open"`
	High   float64     `json:"high"`
	Low    float64     `json:"low"`
	Close  float64     `json:"close"`
	Volume int64       `json:"volume"`
	Sector string      `json:"sector"`
}

// Panel is the full loaded history. It is never mutated after NewPanel, so
// any number of goroutines may filter it concurrently.
type Panel struct {
	records []Record          // ordered by (symbol, date), unique per key
	sectors map[string]string // symbol -> sector as configured
	symbols []string          // distinct symbols present, ascending
}

// NewPanel builds a Panel from provider bars and a symbol->sector mapping.
// Bars are bucketed into calendar days; when two bars share a (symbol, day)
// the later one in the input replaces the earlier.
func NewPanel(bars []domain.Bar, sectors map[string]string) *Panel {
	type key struct {
		symbol string
		date   domain.Date
	}

	mapping := make(map[string]string, len(sectors))
	for sym, sec := range sectors {
		mapping[normSymbol(sym)] = sec
	}

	pos := make(map[key]int, len(bars))
	records := make([]Record, 0, len(bars))
	for _, b := range bars {
		sym := normSymbol(b.Symbol)
		if sym == "" {
			continue
		}
		r := Record{
			Symbol: sym,
			Date:   b.Day(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: max(b.Volume, 0),
			Sector: sectorOf(mapping, sym),
		}
		k := key{sym, r.Date}
		if i, ok := pos[k]; ok {
			records[i] = r
			continue
		}
		pos[k] = len(records)
		records = append(records, r)
	}
	slices.SortFunc(records, compareSymbolDate)

	var symbols []string
	for i := range records {
		if i == 0 || records[i].Symbol != records[i-1].Symbol {
			symbols = append(symbols, records[i].Symbol)
		}
	}

	return &Panel{records: records, sectors: mapping, symbols: symbols}
}

// Len returns the number of records in the panel.
func (p *Panel) Len() int { return len(p.records) }

// Records returns a copy of all records ordered by (symbol, date).
func (p *Panel) Records() []Record { return slices.Clone(p.records) }

// Symbols returns the distinct symbols that have at least one record.
func (p *Panel) Symbols() []string { return slices.Clone(p.symbols) }

// SectorOf returns the sector a symbol is stamped with.
func (p *Panel) SectorOf(symbol string) string {
	return sectorOf(p.sectors, normSymbol(symbol))
}

// SectorNames returns the sorted distinct sectors of the mapping plus any
// sector stamped on a record (which adds UnknownSector for unmapped symbols).
func (p *Panel) SectorNames() []string {
	seen := make(map[string]bool)
	for _, sec := range p.sectors {
		seen[sec] = true
	}
	for i := range p.records {
		seen[p.records[i].Sector] = true
	}
	names := make([]string, 0, len(seen))
	for sec := range seen {
		names = append(names, sec)
	}
	slices.Sort(names)
	return names
}

// DateRange returns the first and last record dates. ok is false for an
// empty panel.
func (p *Panel) DateRange() (first, last domain.Date, ok bool) {
	return dateSpan(p.records)
}

func dateSpan(records []Record) (first, last domain.Date, ok bool) {
	if len(records) == 0 {
		return domain.Date{}, domain.Date{}, false
	}
	first, last = records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last, true
}

func sectorOf(mapping map[string]string, symbol string) string {
	if sec, ok := mapping[symbol]; ok && sec != "" {
		return sec
	}
	return UnknownSector
}

func normSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func compareSymbolDate(a, b Record) int {
	if c := strings.Compare(a.Symbol, b.Symbol); c != 0 {
		return c
	}
	return a.Date.Compare(b.Date)
}
