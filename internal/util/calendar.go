package util

import (
	"time"

	"sp500dash/internal/domain"
)

// TradingCalendar knows the weekday session pattern of a market. Exchange
// holidays are not modelled; the Alpaca calendar covers those when
// credentials are available.
type TradingCalendar struct {
	market domain.Market
	loc    *time.Location
	close  time.Duration // session close as offset from local midnight
}

// NewTradingCalendar creates a TradingCalendar for the given market.
func NewTradingCalendar(market domain.Market) *TradingCalendar {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("ET", -5*3600)
	}
	return &TradingCalendar{
		market: market,
		loc:    loc,
		close:  16 * time.Hour,
	}
}

// Location returns the market's time zone.
func (tc *TradingCalendar) Location() *time.Location { return tc.loc }

// IsTradingDay reports whether d is a weekday.
func (tc *TradingCalendar) IsTradingDay(d domain.Date) bool {
	switch d.Time().Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}

// LastSession returns the most recent trading day whose session had closed
// by t.
func (tc *TradingCalendar) LastSession(t time.Time) domain.Date {
	local := t.In(tc.loc)
	d := domain.DateOf(local)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tc.loc)
	if local.Before(midnight.Add(tc.close)) {
		d = d.AddDays(-1)
	}
	for !tc.IsTradingDay(d) {
		d = d.AddDays(-1)
	}
	return d
}

// Lookback returns the window of days calendar days ending at end.
func Lookback(end domain.Date, days int) (start domain.Date) {
	return end.AddDays(-days)
}
