// Package gather fetches daily bars from market-data providers and persists
// them to a BarStore.
package gather

import (
	"context"

	"sp500dash/internal/domain"
)

// Gatherer is the interface for all data gathering processes.
type Gatherer interface {
	// Name returns the gatherer identifier.
	Name() string
	// Run performs one gathering pass and returns when it is done or ctx is
	// cancelled.
	Run(ctx context.Context) error
}

// BarSource supplies daily bars for a batch of symbols. Symbols the provider
// has no data for are simply absent from the result.
type BarSource interface {
	Name() string
	FetchDaily(ctx context.Context, symbols []string, r DateRange) ([]domain.Bar, error)
}

// SessionClock is implemented by sources that know the exchange calendar.
type SessionClock interface {
	LatestSession(ctx context.Context) (domain.Date, error)
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start domain.Date
	End   domain.Date
}

func (r DateRange) String() string { return r.Start.String() + ".." + r.End.String() }
