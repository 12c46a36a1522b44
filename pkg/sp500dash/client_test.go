package sp500dash

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient(t *testing.T) {
	c := NewClient("http://localhost:8080/")
	if c.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q, trailing slash not trimmed", c.baseURL)
	}
	if c.httpClient == nil {
		t.Fatal("expected non-nil httpClient")
	}
}

func TestGetDashboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/dashboard" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("sector") != "Technology" || q.Get("symbols") != "AAPL,MSFT" || q.Get("price_max") != "250.5" || q.Has("price_min") {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"criteria":{"sector":"Technology","price_max":250.5},
"cards":["2","$155.00","$210.00","$100.00"],
"bundle":{"no_data":false,"summary":{"count":2,"avg_price":155,"max_price":210,"min_price":100},
"volatility":[{"sector":"Technology","volatility":null,"observations":1}],
"latest":[{"symbol":"MSFT","sector":"Technology","close":210,"volume":2000000,"date":"2024-01-03"}],
"stats":{"rows":4,"lines":["Rows: 4"]}}}`))
	}))
	defer srv.Close()

	d, err := NewClient(srv.URL).GetDashboard(context.Background(), Criteria{
		Sector:   "Technology",
		Symbols:  []string{"AAPL", "MSFT"},
		PriceMax: Float(250.5),
	})
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if d.Cards[1] != "$155.00" || d.Bundle.Summary.Count != 2 {
		t.Errorf("dashboard = %+v", d)
	}
	if len(d.Bundle.Latest) != 1 || d.Bundle.Latest[0].Date != "2024-01-03" {
		t.Errorf("latest = %+v", d.Bundle.Latest)
	}
	if d.Bundle.Volatility[0].Volatility != nil {
		t.Error("null volatility should decode to nil")
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status_code":400,"error_code":"VALIDATION_FAILED","message":"Criteria validation failed","details":"price_min exceeds price_max"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetOptions(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 400 || apiErr.ErrorCode != "VALIDATION_FAILED" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Export(context.Background(), Criteria{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.ErrorCode != "HTTP_502" {
		t.Errorf("error = %v", err)
	}
}
