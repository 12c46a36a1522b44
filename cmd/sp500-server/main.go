package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sp500dash/internal/api"
	"sp500dash/internal/app"
	"sp500dash/internal/config"
	"sp500dash/internal/httpapi"
	"sp500dash/internal/metrics"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, cfg)
	cancel()
	os.Exit(code)
}

// run serves until ctx is cancelled and returns the process exit code.
func run(ctx context.Context, cfg *config.Config) int {
	a, err := app.New(cfg)
	if err != nil {
		log.Printf("failed to initialise: %v", err)
		return 1
	}
	defer a.Close()

	m := metrics.New()
	refresher := a.Refresher(true, m)

	// An empty store is filled before the first load; otherwise the stored
	// history is served right away and the cron refresh gathers.
	need, err := a.NeedsGather(ctx)
	if err != nil {
		a.Log.Error("checking store", "error", err)
		return 1
	}
	if need {
		a.Log.Info("store is empty, gathering basket")
		if err := refresher.Reload(ctx); err != nil {
			a.Log.Error("initial load failed", "error", err)
			return 1
		}
	} else {
		p, err := a.LoadPanel(ctx)
		if err != nil {
			a.Log.Error("initial load failed", "error", err)
			return 1
		}
		refresher.Set(p)
		m.PanelLoaded(p.Len(), nil)
	}

	if err := refresher.Schedule(ctx, cfg.Gather.RefreshCron); err != nil {
		a.Log.Error("scheduling refresh", "error", err)
		return 1
	}
	refresher.Start()
	defer refresher.Stop()

	svc := api.NewDashboardService(refresher, a.Settings(), m, a.Log)
	srv := api.NewServer(svc, api.ServerOptions{
		HTTPAddr: cfg.Server.Addr(),
		GRPCAddr: cfg.Server.GRPCAddr(),
		HTTP: httpapi.Options{
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
		},
	}, m, a.Log)

	a.Log.Info("sp500-server starting", "http", cfg.Server.Addr(), "grpc", cfg.Server.GRPCAddr())
	if err := srv.ListenAndServe(ctx); err != nil {
		a.Log.Error("server error", "error", err)
		return 1
	}
	a.Log.Info("sp500-server stopped")
	return 0
}
