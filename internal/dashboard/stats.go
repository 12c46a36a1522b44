package dashboard

import (
	"math"
	"slices"
	"strings"
)

// PriceStats describes a set of closing prices. Std uses the sample (n-1)
// estimator and is nil when fewer than two prices are present.
type PriceStats struct {
	Count  int      `json:"count"`
	Mean   float64  `json:"mean"`
	Median float64  `json:"median"`
	Min    float64  `json:"min"`
	Max    float64  `json:"max"`
	Std    *float64 `json:"std"`
}

// ScalarStats summarizes the close prices of the view. An empty view yields
// the zero PriceStats.
func ScalarStats(v View) PriceStats {
	closes := make([]float64, len(v))
	for i, r := range v {
		closes[i] = r.Close
	}
	return describe(closes)
}

func describe(xs []float64) PriceStats {
	if len(xs) == 0 {
		return PriceStats{}
	}
	s := PriceStats{
		Count: len(xs),
		Min:   math.Inf(1),
		Max:   math.Inf(-1),
	}
	for _, x := range xs {
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)
	}
	s.Mean, _ = Mean(xs)
	s.Median = median(xs)
	if sd, ok := SampleStd(xs); ok {
		s.Std = &sd
	}
	return s
}

// ---------------------------------------------------------------------------
// Grouping
// ---------------------------------------------------------------------------

// Aggregator reduces a group's values. ok is false when the aggregate is
// undefined for the given values.
type Aggregator func(values []float64) (result float64, ok bool)

// Aggregate is one group's result. Value is nil when undefined.
type Aggregate struct {
	N     int
	Value *float64
}

// GroupStats buckets items by key and aggregates the values extracted by
// value. Items for which value reports false still create their group but
// contribute no value, so a group can exist with N == 0.
func GroupStats[T any](items []T, key func(T) string, value func(T) (float64, bool), agg Aggregator) map[string]Aggregate {
	groups := make(map[string][]float64)
	for _, it := range items {
		k := key(it)
		vals := groups[k]
		if x, ok := value(it); ok {
			vals = append(vals, x)
		}
		groups[k] = vals
	}

	out := make(map[string]Aggregate, len(groups))
	for k, vals := range groups {
		a := Aggregate{N: len(vals)}
		if res, ok := agg(vals); ok {
			a.Value = &res
		}
		out[k] = a
	}
	return out
}

// Count is the number of values; always defined.
func Count(values []float64) (float64, bool) { return float64(len(values)), true }

// Mean is the arithmetic mean; undefined for no values.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, x := range values {
		sum += x
	}
	return sum / float64(len(values)), true
}

// SampleStd is the n-1 standard deviation; undefined below two values.
func SampleStd(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	mean, _ := Mean(values)
	var ss float64
	for _, x := range values {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1)), true
}

func median(xs []float64) float64 {
	s := slices.Clone(xs)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// ---------------------------------------------------------------------------
// Sector tables
// ---------------------------------------------------------------------------

// SectorCount is the number of view records in a sector.
type SectorCount struct {
	Sector string `json:"sector"`
	Count  int    `json:"count"`
}

// SectorVolatility is the sample std of a sector's daily returns.
// Volatility is nil when the sector has fewer than two defined returns.
type SectorVolatility struct {
	Sector       string   `json:"sector"`
	Volatility   *float64 `json:"volatility"`
	Observations int      `json:"observations"`
}

// SectorReturn is the mean daily return of a sector.
type SectorReturn struct {
	Sector       string  `json:"sector"`
	MeanReturn   float64 `json:"mean_return"`
	Observations int     `json:"observations"`
}

// SectorDistribution counts records per sector, sorted by sector name.
func SectorDistribution(v View) []SectorCount {
	groups := GroupStats(v, recordSector, func(Record) (float64, bool) { return 1, true }, Count)
	out := make([]SectorCount, 0, len(groups))
	for sec, a := range groups {
		out = append(out, SectorCount{Sector: sec, Count: a.N})
	}
	slices.SortFunc(out, func(a, b SectorCount) int { return strings.Compare(a.Sector, b.Sector) })
	return out
}

// SectorVolatilities computes return volatility per sector. Every sector that
// appears in returns is listed, sorted by name.
func SectorVolatilities(returns []ReturnRecord) []SectorVolatility {
	groups := GroupStats(returns, returnSector, definedReturn, SampleStd)
	out := make([]SectorVolatility, 0, len(groups))
	for sec, a := range groups {
		out = append(out, SectorVolatility{Sector: sec, Volatility: a.Value, Observations: a.N})
	}
	slices.SortFunc(out, func(a, b SectorVolatility) int { return strings.Compare(a.Sector, b.Sector) })
	return out
}

// SectorMeanReturns averages defined returns per sector. Sectors with no
// defined return are omitted.
func SectorMeanReturns(returns []ReturnRecord) []SectorReturn {
	groups := GroupStats(returns, returnSector, definedReturn, Mean)
	out := make([]SectorReturn, 0, len(groups))
	for sec, a := range groups {
		if a.Value == nil {
			continue
		}
		out = append(out, SectorReturn{Sector: sec, MeanReturn: *a.Value, Observations: a.N})
	}
	slices.SortFunc(out, func(a, b SectorReturn) int { return strings.Compare(a.Sector, b.Sector) })
	return out
}

func recordSector(r Record) string       { return r.Sector }
func returnSector(r ReturnRecord) string { return r.Sector }
