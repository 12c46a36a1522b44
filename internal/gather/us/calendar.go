package us

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"

	"sp500dash/internal/domain"
)

// closeCutoff is when a session's daily bar is considered final (ET), after
// extended hours have settled.
const closeCutoff = 20*time.Hour + 5*time.Minute

// LatestSession returns the most recent trading day whose session has ended,
// using the Alpaca trading calendar.
func (s *AlpacaSource) LatestSession(ctx context.Context) (domain.Date, error) {
	if err := ctx.Err(); err != nil {
		return domain.Date{}, err
	}
	et, err := time.LoadLocation("America/New_York")
	if err != nil {
		return domain.Date{}, fmt.Errorf("loading ET timezone: %w", err)
	}

	now := time.Now().In(et)
	days, err := s.calendar.GetCalendar(alpaca.GetCalendarRequest{
		Start: now.AddDate(0, 0, -7),
		End:   now,
	})
	if err != nil {
		return domain.Date{}, fmt.Errorf("GetCalendar: %w", err)
	}
	return latestFinished(days, now)
}

// latestFinished picks the last calendar day strictly before today, or today
// once now is past the cutoff.
func latestFinished(days []alpaca.CalendarDay, now time.Time) (domain.Date, error) {
	if len(days) == 0 {
		return domain.Date{}, fmt.Errorf("no trading days returned from calendar")
	}

	today := domain.DateOf(now)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	pastCutoff := !now.Before(midnight.Add(closeCutoff))

	for i := len(days) - 1; i >= 0; i-- {
		d, err := domain.ParseDate(days[i].Date)
		if err != nil {
			continue
		}
		if d == today {
			if pastCutoff {
				return d, nil
			}
			continue
		}
		if d.Before(today) {
			return d, nil
		}
	}
	return domain.Date{}, fmt.Errorf("could not determine latest finished trading day")
}
