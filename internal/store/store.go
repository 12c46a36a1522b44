// Package store persists daily OHLCV bars for the basket.
package store

import (
	"context"
	"fmt"

	"sp500dash/internal/domain"
)

// Backend names accepted by Open.
const (
	BackendParquet = "parquet"
	BackendSQLite  = "sqlite"
)

// BarStore persists and retrieves daily OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars, replacing any stored bar with the
	// same (symbol, timestamp).
	WriteBars(ctx context.Context, market domain.Market, bars []domain.Bar) error

	// ReadBars returns the bars of symbol whose calendar day lies in
	// [start, end], ordered by timestamp. A zero start or end is open.
	ReadBars(ctx context.Context, market domain.Market, symbol string, start, end domain.Date) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols stored for the market.
	ListSymbols(ctx context.Context, market domain.Market) ([]string, error)

	// Close releases resources held by the store.
	Close() error
}

// Open returns the BarStore for backend. dataDir roots the parquet tree;
// sqlitePath is the database file for the sqlite backend.
func Open(backend, dataDir, sqlitePath string) (BarStore, error) {
	switch backend {
	case "", BackendParquet:
		return NewParquetStore(dataDir), nil
	case BackendSQLite:
		return NewSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// inRange reports whether d lies in [start, end]; zero bounds are open.
func inRange(d, start, end domain.Date) bool {
	if !start.IsZero() && d.Before(start) {
		return false
	}
	if !end.IsZero() && d.After(end) {
		return false
	}
	return true
}
