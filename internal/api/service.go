package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sp500dash/internal/dashboard"
	"sp500dash/internal/metrics"
)

// PanelSource hands out the current panel snapshot.
type PanelSource interface {
	Panel() (*dashboard.Panel, error)
}

// Settings are the dashboard parameters shared by every surface.
type Settings struct {
	Title   string
	TopN    int
	Choices []string
	Price   dashboard.PriceSlider
}

// DashboardService computes bundles and filter options from the current
// panel. It backs both the HTTP and the gRPC surfaces.
type DashboardService struct {
	panels   PanelSource
	settings Settings
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewDashboardService creates a DashboardService. m may be nil.
func NewDashboardService(panels PanelSource, settings Settings, m *metrics.Metrics, log *slog.Logger) *DashboardService {
	if settings.Title == "" {
		settings.Title = "S&P 500 Dashboard"
	}
	return &DashboardService{
		panels:   panels,
		settings: settings,
		metrics:  m,
		log:      log.With("component", "dashboard-service"),
	}
}

// Title is the report heading.
func (s *DashboardService) Title() string { return s.settings.Title }

func (s *DashboardService) panel() (*dashboard.Panel, error) {
	p, err := s.panels.Panel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dashboard.ErrNilPanel, err)
	}
	if p == nil {
		return nil, dashboard.ErrNilPanel
	}
	return p, nil
}

// DefaultCriteria selects everything within the configured price range.
func (s *DashboardService) DefaultCriteria() (dashboard.Criteria, error) {
	p, err := s.panel()
	if err != nil {
		return dashboard.Criteria{}, err
	}
	return dashboard.DefaultCriteria(p, s.settings.Price.Min, s.settings.Price.Max), nil
}

// Update validates c and recomputes every view for it. Errors wrap
// dashboard.ErrInvalidCriteria or dashboard.ErrNilPanel.
func (s *DashboardService) Update(ctx context.Context, surface string, c dashboard.Criteria) (dashboard.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return dashboard.Bundle{}, err
	}
	if err := c.Validate(); err != nil {
		return dashboard.Bundle{}, err
	}
	p, err := s.panel()
	if err != nil {
		return dashboard.Bundle{}, err
	}

	start := time.Now()
	b, err := dashboard.UpdateWith(p, c, dashboard.UpdateOptions{TopN: s.settings.TopN})
	if err != nil {
		return dashboard.Bundle{}, err
	}
	s.metrics.ObserveUpdate(surface, time.Since(start), b.Stats.Rows)
	s.log.Debug("bundle computed",
		"surface", surface,
		"sector", c.Sector,
		"symbols", len(c.Symbols),
		"rows", b.Stats.Rows,
		"elapsed", time.Since(start),
	)
	return b, nil
}

// Options returns the filter choices for the current panel.
func (s *DashboardService) Options(ctx context.Context) (dashboard.FilterOptions, error) {
	if err := ctx.Err(); err != nil {
		return dashboard.FilterOptions{}, err
	}
	p, err := s.panel()
	if err != nil {
		return dashboard.FilterOptions{}, err
	}
	return dashboard.Options(p, s.settings.Choices, s.settings.Price), nil
}
