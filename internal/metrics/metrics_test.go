package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	return rec.Body.String()
}

func TestPanelLoaded(t *testing.T) {
	m := New()
	m.PanelLoaded(150, nil)
	m.PanelLoaded(0, errors.New("boom"))

	body := scrape(t, m)
	for _, want := range []string{
		"sp500_panel_records 150",
		`sp500_panel_refresh_total{result="ok"} 1`,
		`sp500_panel_refresh_total{result="error"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestHandlerExposesUpdates(t *testing.T) {
	m := New()
	m.ObserveUpdate("http", 3*time.Millisecond, 42)
	m.ObserveRequest("/api/dashboard", "200")

	body := scrape(t, m)
	for _, want := range []string{
		`sp500_update_duration_seconds_count{surface="http"} 1`,
		"sp500_update_rows_sum 42",
		`sp500_http_requests_total{code="200",route="/api/dashboard"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveUpdate("cli", time.Second, 1)
	m.PanelLoaded(1, nil)
	m.ObserveRequest("/", "200")
}
