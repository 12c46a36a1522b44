// Package scheduler keeps the in-memory panel fresh: it optionally gathers
// new bars and reloads the panel on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"sp500dash/internal/dashboard"
	"sp500dash/internal/gather"
	"sp500dash/internal/metrics"
)

// ErrNotLoaded is returned by Panel before the first successful reload.
var ErrNotLoaded = errors.New("panel not loaded")

// LoadFunc builds a fresh panel, typically from the bar store.
type LoadFunc func(ctx context.Context) (*dashboard.Panel, error)

// Refresher owns the current panel. Readers get an immutable snapshot;
// reloads swap it atomically.
type Refresher struct {
	load     LoadFunc
	gatherer gather.Gatherer // optional
	metrics  *metrics.Metrics
	log      *slog.Logger

	cron   *cron.Cron
	panel  atomic.Pointer[dashboard.Panel]
	loaded atomic.Int64 // unix seconds of the last successful reload

	runMu sync.Mutex // serializes reloads
}

// NewRefresher creates a Refresher. g may be nil, in which case reloads only
// re-read the store.
func NewRefresher(load LoadFunc, g gather.Gatherer, m *metrics.Metrics, log *slog.Logger) *Refresher {
	return &Refresher{
		load:     load,
		gatherer: g,
		metrics:  m,
		log:      log.With("component", "refresher"),
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Panel returns the current panel snapshot.
func (r *Refresher) Panel() (*dashboard.Panel, error) {
	p := r.panel.Load()
	if p == nil {
		return nil, ErrNotLoaded
	}
	return p, nil
}

// LoadedAt returns when the panel was last replaced, or the zero time.
func (r *Refresher) LoadedAt() time.Time {
	if s := r.loaded.Load(); s > 0 {
		return time.Unix(s, 0)
	}
	return time.Time{}
}

// Set installs p directly, bypassing the loader.
func (r *Refresher) Set(p *dashboard.Panel) {
	r.panel.Store(p)
	r.loaded.Store(time.Now().Unix())
}

// Reload gathers (when a gatherer is configured) and then rebuilds the panel.
// A failed gather is logged and the store is re-read anyway; a failed load
// keeps the previous panel.
func (r *Refresher) Reload(ctx context.Context) error {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	start := time.Now()
	if r.gatherer != nil {
		if err := r.gatherer.Run(ctx); err != nil {
			r.log.Error("gather failed", "gatherer", r.gatherer.Name(), "error", err)
		}
	}

	p, err := r.load(ctx)
	if err != nil {
		r.metrics.PanelLoaded(0, err)
		return fmt.Errorf("reloading panel: %w", err)
	}
	r.Set(p)
	r.metrics.PanelLoaded(p.Len(), nil)
	r.log.Info("panel refreshed", "records", p.Len(), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// Schedule registers a reload on spec (six-field cron with seconds). An
// empty spec registers nothing.
func (r *Refresher) Schedule(ctx context.Context, spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := r.cron.AddFunc(spec, func() {
		if err := r.Reload(ctx); err != nil {
			r.log.Error("scheduled reload failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("register refresh %q: %w", spec, err)
	}
	r.log.Info("refresh scheduled", "cron", spec)
	return nil
}

// Start starts the cron scheduler.
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop stops the cron scheduler and waits for a running reload to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}
