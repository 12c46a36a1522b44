// Package yahoo fetches daily bars from the public Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sp500dash/internal/domain"
	"sp500dash/internal/gather"
)

var _ gather.BarSource = (*Source)(nil)

// DefaultBaseURL is the chart API root.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Source implements gather.BarSource against the v8 chart endpoint, one
// request per symbol.
type Source struct {
	Client  *http.Client
	BaseURL string
}

// NewSource creates a Source with a 30s client timeout.
func NewSource(baseURL string) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Source{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *Source) Name() string { return "yahoo" }

// yahooSymbol maps class-share tickers to Yahoo's dash form (BRK.B -> BRK-B).
func yahooSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, ".", "-")
}

// chartResponse is the response structure of the chart API. Null quote
// entries (halts, holidays) decode as nil pointers.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily fetches each symbol in turn. Unknown symbols are skipped.
func (s *Source) FetchDaily(ctx context.Context, symbols []string, r gather.DateRange) ([]domain.Bar, error) {
	var bars []domain.Bar
	for _, sym := range symbols {
		got, err := s.fetchSymbol(ctx, sym, r)
		if err != nil {
			return nil, fmt.Errorf("yahoo %s: %w", sym, err)
		}
		bars = append(bars, got...)
	}
	return bars, nil
}

func (s *Source) fetchSymbol(ctx context.Context, symbol string, r gather.DateRange) ([]domain.Bar, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", fmt.Sprint(r.Start.Time().Unix()))
	q.Set("period2", fmt.Sprint(r.End.AddDays(1).Time().Unix()))
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", s.BaseURL, url.PathEscape(yahooSymbol(symbol)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if e := chart.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, nil
		}
		return nil, fmt.Errorf("api error: %s", e.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	res := chart.Chart.Result[0]
	quote := res.Indicators.Quote[0]
	bars := make([]domain.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		c := at(quote.Close, i)
		if c == nil {
			continue // null bar
		}
		b := domain.Bar{
			Symbol:    strings.ToUpper(symbol),
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      deref(at(quote.Open, i)),
			High:      deref(at(quote.High, i)),
			Low:       deref(at(quote.Low, i)),
			Close:     *c,
			Volume:    int64(deref(at(quote.Volume, i))),
		}
		if d := b.Day(); d.Before(r.Start) || d.After(r.End) {
			continue
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func at(xs []*float64, i int) *float64 {
	if i < len(xs) {
		return xs[i]
	}
	return nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
