// Package app wires configuration into the stores, sources and services
// shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"sp500dash/internal/api"
	"sp500dash/internal/config"
	"sp500dash/internal/dashboard"
	"sp500dash/internal/domain"
	"sp500dash/internal/gather"
	"sp500dash/internal/gather/us"
	"sp500dash/internal/gather/yahoo"
	"sp500dash/internal/metrics"
	"sp500dash/internal/scheduler"
	"sp500dash/internal/store"
	"sp500dash/internal/util"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Store    store.BarStore
	Gatherer *gather.BasketGatherer
	Sectors  map[string]string
}

// LoadConfig reads the configuration from config.Path().
func LoadConfig() (*config.Config, error) {
	path := config.Path()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// New builds the logger, store, source and gatherer for cfg. The logger is
// also installed as the slog default.
func New(cfg *config.Config) (*App, error) {
	log := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(log)

	sectors, err := dashboard.ResolveSectors(cfg.Basket.Sectors, cfg.Basket.SectorsFile)
	if err != nil {
		return nil, err
	}

	bs, err := store.Open(cfg.Storage.Backend, cfg.Storage.DataDir, cfg.Storage.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	src := NewSource(cfg)
	g := gather.NewBasketGatherer(src, bs, cfg.BasketSymbols(), gather.BasketOptions{
		LookbackDays:    cfg.Gather.LookbackDays,
		BatchSize:       cfg.Gather.BatchSize,
		MaxWorkers:      cfg.Gather.MaxWorkers,
		RateLimitPerMin: cfg.Gather.RateLimitPerMin,
		MaxAttempts:     cfg.Gather.MaxAttempts,
	}, log)

	log.Info("app initialised",
		"backend", cfg.Storage.Backend,
		"source", src.Name(),
		"symbols", len(cfg.BasketSymbols()),
		"sectors", len(sectors),
	)
	return &App{Config: cfg, Log: log, Store: bs, Gatherer: g, Sectors: sectors}, nil
}

// NewSource returns the configured bar source.
func NewSource(cfg *config.Config) gather.BarSource {
	if cfg.Gather.Source == "yahoo" {
		return yahoo.NewSource(cfg.Gather.YahooURL)
	}
	return us.NewAlpacaSource(us.AlpacaOptions{
		APIKey:    cfg.Alpaca.APIKey,
		APISecret: cfg.Alpaca.APISecret,
		BaseURL:   cfg.Alpaca.BaseURL,
		DataURL:   cfg.Alpaca.DataURL,
		Feed:      cfg.Alpaca.Feed,
	})
}

// Close releases the store.
func (a *App) Close() error { return a.Store.Close() }

// LoadPanel reads the lookback window from the store into a panel.
func (a *App) LoadPanel(ctx context.Context) (*dashboard.Panel, error) {
	w := a.Gatherer.Window(ctx)
	return dashboard.LoadPanel(ctx, a.Store, a.Config.BasketSymbols(), a.Sectors, w.Start, w.End, a.Log)
}

// NeedsGather reports whether the store holds none of the basket.
func (a *App) NeedsGather(ctx context.Context) (bool, error) {
	syms, err := a.Store.ListSymbols(ctx, domain.MarketUS)
	if err != nil {
		return false, fmt.Errorf("listing stored symbols: %w", err)
	}
	return len(syms) == 0, nil
}

// Refresher returns a scheduler that gathers and reloads the panel. Pass
// withGather=false to only re-read the store.
func (a *App) Refresher(withGather bool, m *metrics.Metrics) *scheduler.Refresher {
	var g gather.Gatherer
	if withGather {
		g = a.Gatherer
	}
	return scheduler.NewRefresher(a.LoadPanel, g, m, a.Log)
}

// Settings returns the dashboard service settings from the config.
func (a *App) Settings() api.Settings {
	d := a.Config.Dashboard
	return api.Settings{
		TopN:    d.TopN,
		Choices: a.Config.SymbolChoices(),
		Price:   dashboard.PriceSlider{Min: d.PriceMin, Max: d.PriceMax, Step: d.PriceStep},
	}
}
