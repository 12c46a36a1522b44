package dashboard

import (
	"math"
	"sort"
)

// Metric selects the per-record value a ranking is computed over.
type Metric int

const (
	MetricPrice  Metric = iota // close price
	MetricVolume               // volume in millions of shares
)

func (m Metric) String() string {
	switch m {
	case MetricPrice:
		return "price"
	case MetricVolume:
		return "volume"
	default:
		return "unknown"
	}
}

// RankEntry is one symbol's aggregate for a metric. BandLow and BandHigh are
// the distances from Avg down to Min and up to Max, for error-bar rendering.
type RankEntry struct {
	Symbol   string  `json:"symbol"`
	Avg      float64 `json:"avg"`
	Max      float64 `json:"max"`
	Min      float64 `json:"min"`
	BandLow  float64 `json:"band_low"`
	BandHigh float64 `json:"band_high"`
}

func (m Metric) value(r Record) float64 {
	if m == MetricVolume {
		return float64(r.Volume) / 1e6
	}
	return r.Close
}

// TopN ranks symbols by the average of the metric over the view and returns
// at most n entries, ordered by Avg descending then Symbol ascending.
func TopN(v View, n int, m Metric) []RankEntry {
	if n <= 0 {
		return []RankEntry{}
	}

	// Group record indices by symbol.
	groups := make(map[string][]int)
	for i := range v {
		groups[v[i].Symbol] = append(groups[v[i].Symbol], i)
	}

	entries := make([]RankEntry, 0, len(groups))
	for sym, indices := range groups {
		e := RankEntry{
			Symbol: sym,
			Max:    math.Inf(-1),
			Min:    math.Inf(1),
		}
		var sum float64
		for _, idx := range indices {
			x := m.value(v[idx])
			sum += x
			e.Max = math.Max(e.Max, x)
			e.Min = math.Min(e.Min, x)
		}
		e.Avg = sum / float64(len(indices))
		e.BandLow = math.Max(0, e.Avg-e.Min)
		e.BandHigh = math.Max(0, e.Max-e.Avg)
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Avg != entries[j].Avg {
			return entries[i].Avg > entries[j].Avg
		}
		return entries[i].Symbol < entries[j].Symbol
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
