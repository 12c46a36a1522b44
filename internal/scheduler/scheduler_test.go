package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"sp500dash/internal/dashboard"
	"sp500dash/internal/domain"
	"sp500dash/internal/metrics"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type countingGatherer struct {
	runs int
	err  error
}

func (g *countingGatherer) Name() string { return "counting" }
func (g *countingGatherer) Run(context.Context) error {
	g.runs++
	return g.err
}

func onePanel(close float64) *dashboard.Panel {
	return dashboard.NewPanel([]domain.Bar{{
		Symbol:    "AAPL",
		Timestamp: time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC),
		Close:     close,
	}}, map[string]string{"AAPL": "Technology"})
}

func TestPanelBeforeLoad(t *testing.T) {
	r := NewRefresher(func(context.Context) (*dashboard.Panel, error) { return onePanel(1), nil }, nil, nil, discard)
	if _, err := r.Panel(); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Panel() error = %v, want ErrNotLoaded", err)
	}
	if !r.LoadedAt().IsZero() {
		t.Error("LoadedAt should be zero before first load")
	}
}

func TestReload(t *testing.T) {
	g := &countingGatherer{err: errors.New("provider down")}
	loads := 0
	r := NewRefresher(func(context.Context) (*dashboard.Panel, error) {
		loads++
		return onePanel(float64(loads)), nil
	}, g, metrics.New(), discard)

	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if g.runs != 1 || loads != 1 {
		t.Errorf("runs=%d loads=%d, want 1/1 (gather failure must not block load)", g.runs, loads)
	}
	p, err := r.Panel()
	if err != nil {
		t.Fatalf("Panel: %v", err)
	}
	if p.Len() != 1 || r.LoadedAt().IsZero() {
		t.Errorf("panel len=%d loadedAt=%v", p.Len(), r.LoadedAt())
	}
}

func TestReloadKeepsPreviousPanelOnError(t *testing.T) {
	fail := false
	r := NewRefresher(func(context.Context) (*dashboard.Panel, error) {
		if fail {
			return nil, errors.New("disk gone")
		}
		return onePanel(100), nil
	}, nil, nil, discard)

	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("first Reload: %v", err)
	}
	before, _ := r.Panel()

	fail = true
	if err := r.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error")
	}
	after, err := r.Panel()
	if err != nil || after != before {
		t.Errorf("panel replaced after failed reload: %v", err)
	}
}

func TestSchedule(t *testing.T) {
	r := NewRefresher(func(context.Context) (*dashboard.Panel, error) { return onePanel(1), nil }, nil, nil, discard)
	if err := r.Schedule(context.Background(), ""); err != nil {
		t.Errorf("empty spec: %v", err)
	}
	if err := r.Schedule(context.Background(), "not a cron"); err == nil {
		t.Error("expected error for invalid spec")
	}
	if err := r.Schedule(context.Background(), "0 30 21 * * MON-FRI"); err != nil {
		t.Errorf("valid spec: %v", err)
	}
	r.Start()
	r.Stop()
}
