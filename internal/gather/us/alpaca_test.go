package us

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"sp500dash/internal/domain"
	"sp500dash/internal/gather"
)

type stubBars struct {
	got  []string
	req  marketdata.GetBarsRequest
	resp map[string][]marketdata.Bar
	err  error
}

func (s *stubBars) GetMultiBars(symbols []string, req marketdata.GetBarsRequest) (map[string][]marketdata.Bar, error) {
	s.got, s.req = symbols, req
	return s.resp, s.err
}

func TestAlpacaSourceName(t *testing.T) {
	src := NewAlpacaSource(AlpacaOptions{APIKey: "key", APISecret: "secret"})
	if got := src.Name(); got != "alpaca" {
		t.Errorf("Name() = %q, want %q", got, "alpaca")
	}
	if src.feed != "sip" {
		t.Errorf("default feed = %q, want sip", src.feed)
	}
}

func TestAlpacaFetchDaily(t *testing.T) {
	et := time.FixedZone("EST", -5*3600)
	stub := &stubBars{resp: map[string][]marketdata.Bar{
		"aapl": {
			{Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, et), Open: 187.15, High: 188.44, Low: 183.89, Close: 185.64, Volume: 82488700, TradeCount: 1009074, VWAP: 185.9},
			{Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, et), Close: 184.25, Volume: 58414500},
		},
	}}
	src := &AlpacaSource{bars: stub, feed: "iex"}

	r := gather.DateRange{Start: domain.NewDate(2024, 1, 1), End: domain.NewDate(2024, 1, 2)}
	bars, err := src.FetchDaily(context.Background(), []string{"AAPL", "MSFT"}, r)
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	if len(stub.got) != 2 || stub.req.TimeFrame != marketdata.OneDay {
		t.Errorf("request = %v %+v", stub.got, stub.req)
	}
	if !stub.req.End.Equal(domain.NewDate(2024, 1, 3).Time()) {
		t.Errorf("request End = %v, want exclusive day after range", stub.req.End)
	}
	if len(bars) != 1 {
		t.Fatalf("got %d bars, want 1 (second is past range end)", len(bars))
	}
	b := bars[0]
	if b.Symbol != "AAPL" || b.Volume != 82488700 || b.TradeCount != 1009074 || b.Day() != domain.NewDate(2024, 1, 2) {
		t.Errorf("bar = %+v", b)
	}

	stub.err = errors.New("forbidden")
	if _, err := src.FetchDaily(context.Background(), []string{"AAPL"}, r); err == nil {
		t.Error("expected provider error to propagate")
	}
}

func TestLatestFinished(t *testing.T) {
	et := time.FixedZone("EDT", -4*3600)
	days := []alpaca.CalendarDay{{Date: "2024-06-12"}, {Date: "2024-06-13"}, {Date: "2024-06-14"}}

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"during session", time.Date(2024, 6, 14, 11, 0, 0, 0, et), "2024-06-13"},
		{"after cutoff", time.Date(2024, 6, 14, 20, 30, 0, 0, et), "2024-06-14"},
		{"weekend", time.Date(2024, 6, 16, 9, 0, 0, 0, et), "2024-06-14"},
	}
	for _, tt := range tests {
		got, err := latestFinished(days, tt.now)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got.String() != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}

	if _, err := latestFinished(nil, time.Now()); err == nil {
		t.Error("empty calendar should fail")
	}
}
