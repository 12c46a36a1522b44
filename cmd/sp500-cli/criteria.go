package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"sp500dash/internal/dashboard"
	"sp500dash/internal/domain"
)

// criteriaFlags are the filter flags shared by every dashboard command.
// Unset flags keep the default criteria.
type criteriaFlags struct {
	sector   string
	symbols  string
	priceMin string
	priceMax string
	start    string
	end      string
}

func (c *criteriaFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sector, "sector", "", `sector to keep, or "all"`)
	f.StringVar(&c.symbols, "symbols", "", "comma separated symbols to keep (default every symbol)")
	f.StringVar(&c.priceMin, "price-min", "", "lowest close to keep")
	f.StringVar(&c.priceMax, "price-max", "", "highest close to keep")
	f.StringVar(&c.start, "start", "", "first date to keep, YYYY-MM-DD")
	f.StringVar(&c.end, "end", "", "last date to keep, YYYY-MM-DD")
}

// apply overlays the flags that were given on base.
func (c *criteriaFlags) apply(base dashboard.Criteria) (dashboard.Criteria, error) {
	if c.sector != "" {
		base.Sector = c.sector
	}
	if c.symbols != "" {
		base.Symbols = nil
		for _, s := range strings.Split(c.symbols, ",") {
			if s = strings.TrimSpace(s); s != "" {
				base.Symbols = append(base.Symbols, strings.ToUpper(s))
			}
		}
	}
	var err error
	if base.PriceMin, err = floatFlag("price-min", c.priceMin, base.PriceMin); err != nil {
		return base, err
	}
	if base.PriceMax, err = floatFlag("price-max", c.priceMax, base.PriceMax); err != nil {
		return base, err
	}
	if base.Start, err = dateFlag("start", c.start, base.Start); err != nil {
		return base, err
	}
	if base.End, err = dateFlag("end", c.end, base.End); err != nil {
		return base, err
	}
	return base, nil
}

func floatFlag(name, raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, fmt.Errorf("-%s: %w", name, err)
	}
	return v, nil
}

func dateFlag(name, raw string, def domain.Date) (domain.Date, error) {
	if raw == "" {
		return def, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return def, fmt.Errorf("-%s: %w", name, err)
	}
	return d, nil
}

// selectJSON returns v as indented JSON, narrowed to the jsonpath expression
// p when p is not empty.
func selectJSON(v any, p string) ([]byte, error) {
	if p == "" {
		return json.MarshalIndent(v, "", "  ")
	}
	// jsonpath walks plain maps and slices, so round-trip through JSON first.
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var jobj any
	if err := json.Unmarshal(raw, &jobj); err != nil {
		return nil, err
	}
	jval, err := jsonpath.Get(p, jobj)
	if err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", p, err)
	}
	return json.MarshalIndent(jval, "", "  ")
}
