package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"sp500dash/internal/domain"
)

// AllSectors disables the sector predicate. Matching is case-insensitive and
// an empty Sector means the same thing.
const AllSectors = "all"

// ErrInvalidCriteria is wrapped by Criteria.Validate failures.
var ErrInvalidCriteria = errors.New("invalid criteria")

// Criteria is the user's filter selection. Ranges are inclusive at both ends.
type Criteria struct {
	Sector   string      `json:"sector" validate:"max=64"`
	Symbols  []string    `json:"symbols,omitempty" validate:"max=100,dive,required,max=16"`
	PriceMin float64     `json:"price_min" validate:"gte=0"`
	PriceMax float64     `json:"price_max" validate:"gte=0"`
	Start    domain.Date `json:"start"`
	End      domain.Date `json:"end"`
}

// View is an ordered subset of a Panel's records.
type View []Record

// Predicate reports whether a record is kept.
type Predicate func(Record) bool

var validate = validator.New()

// Validate checks the criteria at an API boundary. The engine never calls
// it: inverted ranges simply match nothing there.
func (c Criteria) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	if c.PriceMin > c.PriceMax {
		return fmt.Errorf("%w: price_min %.2f exceeds price_max %.2f", ErrInvalidCriteria, c.PriceMin, c.PriceMax)
	}
	if !c.Start.IsZero() && !c.End.IsZero() && c.Start.After(c.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidCriteria, c.Start, c.End)
	}
	return nil
}

// AllSectorsSelected reports whether the sector predicate is bypassed.
func (c Criteria) AllSectorsSelected() bool {
	return c.Sector == "" || strings.EqualFold(c.Sector, AllSectors)
}

// Predicates returns the active predicates for c. Sector and symbol
// predicates are omitted when bypassed; a zero Start or End leaves that side
// of the date range open.
func (c Criteria) Predicates() []Predicate {
	var preds []Predicate

	if !c.AllSectorsSelected() {
		sector := c.Sector
		preds = append(preds, func(r Record) bool { return r.Sector == sector })
	}

	if len(c.Symbols) > 0 {
		set := make(map[string]struct{}, len(c.Symbols))
		for _, s := range c.Symbols {
			set[normSymbol(s)] = struct{}{}
		}
		preds = append(preds, func(r Record) bool {
			_, ok := set[r.Symbol]
			return ok
		})
	}

	lo, hi := c.PriceMin, c.PriceMax
	preds = append(preds, func(r Record) bool { return r.Close >= lo && r.Close <= hi })

	start, end := c.Start, c.End
	if !start.IsZero() {
		preds = append(preds, func(r Record) bool { return !r.Date.Before(start) })
	}
	if !end.IsZero() {
		preds = append(preds, func(r Record) bool { return !r.Date.After(end) })
	}
	return preds
}

// Filter returns the panel records satisfying every predicate of c, in panel
// order. A nil panel or zero matches yields an empty, non-nil View.
func Filter(p *Panel, c Criteria) View {
	return Apply(p, c.Predicates()...)
}

// Apply keeps the panel records for which every predicate holds.
func Apply(p *Panel, preds ...Predicate) View {
	out := View{}
	if p == nil {
		return out
	}
outer:
	for _, r := range p.records {
		for _, keep := range preds {
			if !keep(r) {
				continue outer
			}
		}
		out = append(out, r)
	}
	return out
}
