// Package domain holds the core value types shared across storage, data
// sources, and the dashboard engine.
package domain

import "time"

// Market identifies the exchange group a symbol trades on.
type Market string

const (
	MarketUS Market = "us"
)

// Bar is one OHLCV bar as returned by a market-data provider.
type Bar struct {
	Symbol     string
	Timestamp  time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     int64
	TradeCount int64
	VWAP       float64
}

// Day returns the calendar date the bar belongs to, read in UTC.
func (b Bar) Day() Date {
	return DateOf(b.Timestamp.UTC())
}
