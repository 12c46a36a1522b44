package dashboard

import (
	"sp500dash/internal/domain"
)

// DefaultChoiceCount is how many basket symbols the symbol picker offers when
// no explicit choices are configured.
const DefaultChoiceCount = 10

// PriceSlider describes the price range control.
type PriceSlider struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// FilterOptions lists the values a client can offer in its filter controls.
type FilterOptions struct {
	Sectors []string    `json:"sectors"`
	Symbols []string    `json:"symbols"`
	Start   domain.Date `json:"start"`
	End     domain.Date `json:"end"`
	Price   PriceSlider `json:"price"`
}

// Options returns the filter choices for p. Sectors always lead with
// AllSectors. choices restricts the symbol picker; when empty the first
// DefaultChoiceCount panel symbols are offered.
func Options(p *Panel, choices []string, price PriceSlider) FilterOptions {
	opts := FilterOptions{
		Sectors: []string{AllSectors},
		Symbols: []string{},
		Price:   price,
	}
	if p == nil {
		return opts
	}
	opts.Sectors = append(opts.Sectors, p.SectorNames()...)

	if len(choices) > 0 {
		seen := make(map[string]bool, len(choices))
		for _, s := range choices {
			s = normSymbol(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			opts.Symbols = append(opts.Symbols, s)
		}
	} else {
		syms := p.Symbols()
		opts.Symbols = append(opts.Symbols, syms[:min(len(syms), DefaultChoiceCount)]...)
	}

	opts.Start, opts.End, _ = p.DateRange()
	return opts
}

// DefaultCriteria selects everything: all sectors, every symbol, the given
// price range and the panel's full date span.
func DefaultCriteria(p *Panel, priceMin, priceMax float64) Criteria {
	c := Criteria{Sector: AllSectors, PriceMin: priceMin, PriceMax: priceMax}
	if p != nil {
		c.Start, c.End, _ = p.DateRange()
	}
	return c
}
