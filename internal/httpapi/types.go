// Package httpapi serves the dashboard over HTTP: JSON bundles, filter
// options, an xlsx export and an HTML report.
package httpapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"sp500dash/internal/dashboard"
	"sp500dash/internal/domain"
)

// DashboardResponse wraps a bundle with the criteria it was computed for.
type DashboardResponse struct {
	Criteria dashboard.Criteria `json:"criteria"`
	Cards    [4]string          `json:"cards"`
	Bundle   dashboard.Bundle   `json:"bundle"`
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status string `json:"status"`
}

// criteriaFromQuery overlays query parameters on base. Recognised keys:
// sector, symbols (comma separated or repeated), price_min, price_max,
// start and end (YYYY-MM-DD).
func criteriaFromQuery(q url.Values, base dashboard.Criteria) (dashboard.Criteria, error) {
	c := base
	if q.Has("sector") {
		c.Sector = strings.TrimSpace(q.Get("sector"))
	}
	if vals, ok := q["symbols"]; ok {
		c.Symbols = nil
		for _, v := range vals {
			for _, s := range strings.Split(v, ",") {
				if s = strings.TrimSpace(s); s != "" {
					c.Symbols = append(c.Symbols, s)
				}
			}
		}
	}

	var err error
	if c.PriceMin, err = floatParam(q, "price_min", c.PriceMin); err != nil {
		return c, err
	}
	if c.PriceMax, err = floatParam(q, "price_max", c.PriceMax); err != nil {
		return c, err
	}
	if c.Start, err = dateParam(q, "start", c.Start); err != nil {
		return c, err
	}
	if c.End, err = dateParam(q, "end", c.End); err != nil {
		return c, err
	}
	return c, nil
}

func floatParam(q url.Values, key string, def float64) (float64, error) {
	s := q.Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, s)
	}
	return v, nil
}

func dateParam(q url.Values, key string, def domain.Date) (domain.Date, error) {
	s := q.Get(key)
	if s == "" {
		return def, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return domain.Date{}, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
