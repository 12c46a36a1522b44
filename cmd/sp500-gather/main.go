package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sp500dash/internal/app"
	"sp500dash/internal/config"
)

func main() {
	lookback := flag.Int("lookback", 0, "override gather.lookback_days")
	source := flag.String("source", "", "override gather.source (alpaca or yahoo)")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *lookback > 0 {
		cfg.Gather.LookbackDays = *lookback
	}
	if *source != "" {
		cfg.Gather.Source = *source
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid -source: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, cfg)
	cancel()
	os.Exit(code)
}

// run gathers the basket once and returns the process exit code.
func run(ctx context.Context, cfg *config.Config) int {
	a, err := app.New(cfg)
	if err != nil {
		log.Printf("failed to initialise: %v", err)
		return 1
	}
	defer a.Close()

	res, err := a.Gatherer.Gather(ctx)
	if err != nil {
		a.Log.Error("gather failed", "error", err)
		return 1
	}
	fmt.Printf("gathered %d bars for %d symbols over %s\n", res.Bars, len(res.Symbols), res.Range)
	if len(res.Missing) > 0 {
		fmt.Printf("no data for: %v\n", res.Missing)
	}
	return 0
}
