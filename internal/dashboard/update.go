package dashboard

import (
	"errors"
	"fmt"

	"sp500dash/internal/domain"
)

// DefaultTopN is the ranking depth used when Options.TopN is unset.
const DefaultTopN = 10

// NoDataMessage is the single descriptive line of an empty bundle.
const NoDataMessage = "No data available"

// ErrNilPanel is returned by Update when no panel has been loaded.
var ErrNilPanel = errors.New("dashboard: nil panel")

// Summary backs the KPI cards. Count is the number of distinct symbols.
type Summary struct {
	Count    int     `json:"count"`
	AvgPrice float64 `json:"avg_price"`
	MaxPrice float64 `json:"max_price"`
	MinPrice float64 `json:"min_price"`
}

// Cards returns the KPI strings: count, then average, max and min price.
func (s Summary) Cards() [4]string {
	return [4]string{
		FormatCount(s.Count),
		FormatUSD(s.AvgPrice),
		FormatUSD(s.MaxPrice),
		FormatUSD(s.MinPrice),
	}
}

// Descriptive is the statistics block shown as text.
type Descriptive struct {
	Rows      int         `json:"rows"`
	Symbols   int         `json:"symbols"`
	Sectors   int         `json:"sectors"`
	FirstDate domain.Date `json:"first_date"`
	LastDate  domain.Date `json:"last_date"`
	Price     PriceStats  `json:"price"`
	Lines     []string    `json:"lines"`
}

// Bundle carries every view of one dashboard update.
type Bundle struct {
	NoData          bool               `json:"no_data"`
	Summary         Summary            `json:"summary"`
	Sectors         []SectorCount      `json:"sectors"`
	Volatility      []SectorVolatility `json:"volatility"`
	Latest          []LatestRow        `json:"latest"`
	Stats           Descriptive        `json:"stats"`
	SectorReturns   []SectorReturn     `json:"sector_returns"`
	PriceComparison []RankEntry        `json:"price_comparison"`
	Volume          []RankEntry        `json:"volume"`
	Series          []PriceSeries      `json:"series"`
}

// UpdateOptions tunes Update. The zero value uses DefaultTopN.
type UpdateOptions struct {
	TopN int
}

// Update filters the panel and recomputes every view from scratch. The only
// error is ErrNilPanel; an empty selection yields the no-data bundle.
func Update(p *Panel, c Criteria) (Bundle, error) {
	return UpdateWith(p, c, UpdateOptions{})
}

// UpdateWith is Update with explicit options.
func UpdateWith(p *Panel, c Criteria, opts UpdateOptions) (Bundle, error) {
	if p == nil {
		return Bundle{}, ErrNilPanel
	}
	n := opts.TopN
	if n <= 0 {
		n = DefaultTopN
	}

	v := Filter(p, c)
	if len(v) == 0 {
		return emptyBundle(), nil
	}

	returns := ComputeReturns(v)
	stats := ScalarStats(v)
	latest := LatestPerSymbol(v)
	sectors := SectorDistribution(v)

	b := Bundle{
		Summary: Summary{
			Count:    len(latest),
			AvgPrice: stats.Mean,
			MaxPrice: stats.Max,
			MinPrice: stats.Min,
		},
		Sectors:         sectors,
		Volatility:      SectorVolatilities(returns),
		Latest:          latest,
		SectorReturns:   SectorMeanReturns(returns),
		PriceComparison: TopN(v, n, MetricPrice),
		Volume:          TopN(v, n, MetricVolume),
		Series:          PriceSeriesBySymbol(v),
	}

	first, last, _ := dateSpan(v)
	b.Stats = Descriptive{
		Rows:      len(v),
		Symbols:   len(latest),
		Sectors:   len(sectors),
		FirstDate: first,
		LastDate:  last,
		Price:     stats,
	}
	b.Stats.Lines = describeLines(b.Stats)
	return b, nil
}

func emptyBundle() Bundle {
	return Bundle{
		NoData:          true,
		Sectors:         []SectorCount{},
		Volatility:      []SectorVolatility{},
		Latest:          []LatestRow{},
		SectorReturns:   []SectorReturn{},
		PriceComparison: []RankEntry{},
		Volume:          []RankEntry{},
		Series:          []PriceSeries{},
		Stats:           Descriptive{Lines: []string{NoDataMessage}},
	}
}

func describeLines(d Descriptive) []string {
	return []string{
		fmt.Sprintf("Rows: %s", FormatCount(d.Rows)),
		fmt.Sprintf("Symbols: %d", d.Symbols),
		fmt.Sprintf("Sectors: %d", d.Sectors),
		fmt.Sprintf("Date range: %s to %s", d.FirstDate, d.LastDate),
		fmt.Sprintf("Mean: %s", FormatUSD(d.Price.Mean)),
		fmt.Sprintf("Median: %s", FormatUSD(d.Price.Median)),
		fmt.Sprintf("Min: %s", FormatUSD(d.Price.Min)),
		fmt.Sprintf("Max: %s", FormatUSD(d.Price.Max)),
		fmt.Sprintf("Std dev: %s", FormatOptionalUSD(d.Price.Std)),
	}
}
