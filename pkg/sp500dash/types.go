package sp500dash

// Criteria selects the rows a dashboard is computed over. Zero values are
// replaced by the server defaults: every sector, every symbol, the
// configured price range and the full date span.
type Criteria struct {
	Sector   string   // "all" or a sector name
	Symbols  []string // empty means every symbol
	PriceMin *float64
	PriceMax *float64
	Start    string // YYYY-MM-DD
	End      string // YYYY-MM-DD
}

// Dashboard is the /api/dashboard response.
type Dashboard struct {
	Criteria struct {
		Sector   string   `json:"sector"`
		Symbols  []string `json:"symbols"`
		PriceMin float64  `json:"price_min"`
		PriceMax float64  `json:"price_max"`
		Start    string   `json:"start"`
		End      string   `json:"end"`
	} `json:"criteria"`
	Cards  [4]string `json:"cards"`
	Bundle Bundle    `json:"bundle"`
}

// Bundle holds every view of one dashboard update.
type Bundle struct {
	NoData          bool           `json:"no_data"`
	Summary         Summary        `json:"summary"`
	Sectors         []SectorCount  `json:"sectors"`
	Volatility      []SectorValue  `json:"volatility"`
	Latest          []LatestRow    `json:"latest"`
	Stats           Stats          `json:"stats"`
	SectorReturns   []SectorReturn `json:"sector_returns"`
	PriceComparison []RankEntry    `json:"price_comparison"`
	Volume          []RankEntry    `json:"volume"`
	Series          []Series       `json:"series"`
}

type Summary struct {
	Count    int     `json:"count"`
	AvgPrice float64 `json:"avg_price"`
	MaxPrice float64 `json:"max_price"`
	MinPrice float64 `json:"min_price"`
}

type SectorCount struct {
	Sector string `json:"sector"`
	Count  int    `json:"count"`
}

// SectorValue is a per-sector volatility; Volatility is nil when undefined.
type SectorValue struct {
	Sector       string   `json:"sector"`
	Volatility   *float64 `json:"volatility"`
	Observations int      `json:"observations"`
}

type SectorReturn struct {
	Sector       string  `json:"sector"`
	MeanReturn   float64 `json:"mean_return"`
	Observations int     `json:"observations"`
}

type LatestRow struct {
	Symbol string  `json:"symbol"`
	Sector string  `json:"sector"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
	Date   string  `json:"date"`
}

type Stats struct {
	Rows      int      `json:"rows"`
	Symbols   int      `json:"symbols"`
	Sectors   int      `json:"sectors"`
	FirstDate string   `json:"first_date"`
	LastDate  string   `json:"last_date"`
	Lines     []string `json:"lines"`
}

type RankEntry struct {
	Symbol   string  `json:"symbol"`
	Avg      float64 `json:"avg"`
	Max      float64 `json:"max"`
	Min      float64 `json:"min"`
	BandLow  float64 `json:"band_low"`
	BandHigh float64 `json:"band_high"`
}

type Series struct {
	Symbol string `json:"symbol"`
	Sector string `json:"sector"`
	Points []struct {
		Date  string  `json:"date"`
		Close float64 `json:"close"`
	} `json:"points"`
}

// FilterOptions is the /api/options response.
type FilterOptions struct {
	Sectors []string `json:"sectors"`
	Symbols []string `json:"symbols"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Price   struct {
		Min  float64 `json:"min"`
		Max  float64 `json:"max"`
		Step float64 `json:"step"`
	} `json:"price"`
}

// APIError is the body of a non-2xx response.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != nil {
		return e.ErrorCode + ": " + e.Message + ": " + stringify(e.Details)
	}
	return e.ErrorCode + ": " + e.Message
}
