// Package us fetches US equity daily bars and the exchange calendar from
// Alpaca.
package us

import (
	"context"
	"fmt"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"sp500dash/internal/domain"
	"sp500dash/internal/gather"
)

// ---------------------------------------------------------------------------
// Compile-time interface checks
// ---------------------------------------------------------------------------

var _ gather.BarSource = (*AlpacaSource)(nil)
var _ gather.SessionClock = (*AlpacaSource)(nil)

// multiBarsClient is the slice of the market-data client the source uses.
type multiBarsClient interface {
	GetMultiBars(symbols []string, req marketdata.GetBarsRequest) (map[string][]marketdata.Bar, error)
}

// calendarClient is the slice of the trading client the source uses.
type calendarClient interface {
	GetCalendar(req alpaca.GetCalendarRequest) ([]alpaca.CalendarDay, error)
}

// AlpacaSource fetches daily bars via the Alpaca market-data API and knows
// the exchange calendar through the trading API.
type AlpacaSource struct {
	bars     multiBarsClient
	calendar calendarClient
	feed     string
}

// AlpacaOptions configures NewAlpacaSource.
type AlpacaOptions struct {
	APIKey    string
	APISecret string
	BaseURL   string // trading API, used for the calendar
	DataURL   string // market-data API
	Feed      string // "sip" (default) or "iex"
}

// NewAlpacaSource creates an AlpacaSource from credentials.
func NewAlpacaSource(o AlpacaOptions) *AlpacaSource {
	dataOpts := marketdata.ClientOpts{
		APIKey:    o.APIKey,
		APISecret: o.APISecret,
	}
	if o.DataURL != "" {
		dataOpts.BaseURL = o.DataURL
	}
	feed := o.Feed
	if feed == "" {
		feed = "sip"
	}
	return &AlpacaSource{
		bars: marketdata.NewClient(dataOpts),
		calendar: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    o.APIKey,
			APISecret: o.APISecret,
			BaseURL:   o.BaseURL,
		}),
		feed: feed,
	}
}

// Name returns the source identifier.
func (s *AlpacaSource) Name() string { return "alpaca" }

// FetchDaily fetches daily bars for multiple symbols in a single API call.
func (s *AlpacaSource) FetchDaily(ctx context.Context, symbols []string, r gather.DateRange) ([]domain.Bar, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	multiBars, err := s.bars.GetMultiBars(symbols, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     r.Start.Time(),
		End:       r.End.AddDays(1).Time(),
		Feed:      marketdata.Feed(s.feed),
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}

	var bars []domain.Bar
	for symbol, alpacaBars := range multiBars {
		for _, ab := range alpacaBars {
			b := domain.Bar{
				Symbol:     strings.ToUpper(symbol),
				Timestamp:  ab.Timestamp,
				Open:       ab.Open,
				High:       ab.High,
				Low:        ab.Low,
				Close:      ab.Close,
				Volume:     int64(ab.Volume),
				TradeCount: int64(ab.TradeCount),
				VWAP:       ab.VWAP,
			}
			if d := b.Day(); d.Before(r.Start) || d.After(r.End) {
				continue
			}
			bars = append(bars, b)
		}
	}
	return bars, nil
}
