// Package sp500dash is a Go SDK for the sp500-server HTTP API.
package sp500dash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client provides a Go SDK for interacting with the sp500-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetDashboard computes the dashboard for c.
func (c *Client) GetDashboard(ctx context.Context, crit Criteria) (*Dashboard, error) {
	var d Dashboard
	if err := c.get(ctx, "/api/dashboard", crit.query(), &d); err != nil {
		return nil, fmt.Errorf("GetDashboard: %w", err)
	}
	return &d, nil
}

// GetOptions retrieves the filter choices.
func (c *Client) GetOptions(ctx context.Context) (*FilterOptions, error) {
	var o FilterOptions
	if err := c.get(ctx, "/api/options", nil, &o); err != nil {
		return nil, fmt.Errorf("GetOptions: %w", err)
	}
	return &o, nil
}

// Export downloads the xlsx workbook for crit.
func (c *Client) Export(ctx context.Context, crit Criteria) ([]byte, error) {
	resp, err := c.do(ctx, "/api/export.xlsx", crit.query())
	if err != nil {
		return nil, fmt.Errorf("Export: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	resp, err := c.do(ctx, path, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

// do issues a GET and turns non-2xx responses into *APIError.
func (c *Client) do(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 == 2 {
		return resp, nil
	}
	defer resp.Body.Close()
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.ErrorCode == "" {
		apiErr.ErrorCode = "HTTP_" + strconv.Itoa(resp.StatusCode)
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return nil, apiErr
}

func (c Criteria) query() url.Values {
	q := url.Values{}
	if c.Sector != "" {
		q.Set("sector", c.Sector)
	}
	if len(c.Symbols) > 0 {
		q.Set("symbols", strings.Join(c.Symbols, ","))
	}
	if c.PriceMin != nil {
		q.Set("price_min", strconv.FormatFloat(*c.PriceMin, 'f', -1, 64))
	}
	if c.PriceMax != nil {
		q.Set("price_max", strconv.FormatFloat(*c.PriceMax, 'f', -1, 64))
	}
	if c.Start != "" {
		q.Set("start", c.Start)
	}
	if c.End != "" {
		q.Set("end", c.End)
	}
	return q
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// Float returns a pointer to v, for the optional Criteria price bounds.
func Float(v float64) *float64 { return &v }
