package gather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sp500dash/internal/domain"
	"sp500dash/internal/store"
	"sp500dash/internal/util"
)

var _ Gatherer = (*BasketGatherer)(nil)

// BasketOptions tunes a BasketGatherer. Zero fields take defaults.
type BasketOptions struct {
	LookbackDays    int           // window length ending at the latest session (365)
	BatchSize       int           // symbols per provider call (50)
	MaxWorkers      int           // concurrent batches (4)
	RateLimitPerMin int           // provider calls per minute; 0 disables
	MaxAttempts     int           // tries per batch (3)
	RetryDelay      time.Duration // first backoff (1s)
}

func (o BasketOptions) withDefaults() BasketOptions {
	if o.LookbackDays <= 0 {
		o.LookbackDays = 365
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = 4
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = time.Second
	}
	return o
}

// Result summarizes one gathering pass.
type Result struct {
	Range   DateRange
	Bars    int
	Symbols []string // symbols that returned data
	Missing []string // symbols the provider had nothing for
}

// BasketGatherer fetches one lookback window of daily bars for a fixed
// basket of symbols and writes them to a store.
type BasketGatherer struct {
	source  BarSource
	store   store.BarStore
	symbols []string
	opts    BasketOptions
	limiter *util.RateLimiter
	cal     *util.TradingCalendar
	now     func() time.Time
	log     *slog.Logger

	mu   sync.Mutex
	last Result
}

// NewBasketGatherer creates a BasketGatherer for symbols.
func NewBasketGatherer(src BarSource, bs store.BarStore, symbols []string, opts BasketOptions, log *slog.Logger) *BasketGatherer {
	opts = opts.withDefaults()
	upper := make([]string, len(symbols))
	for i, s := range symbols {
		upper[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return &BasketGatherer{
		source:  src,
		store:   bs,
		symbols: upper,
		opts:    opts,
		limiter: util.NewRateLimiter(opts.RateLimitPerMin),
		cal:     util.NewTradingCalendar(domain.MarketUS),
		now:     time.Now,
		log:     log.With("gatherer", "basket", "source", src.Name()),
	}
}

// Name returns the gatherer identifier.
func (g *BasketGatherer) Name() string { return "basket-" + g.source.Name() }

// Run fetches the window and writes it; see Gather.
func (g *BasketGatherer) Run(ctx context.Context) error {
	_, err := g.Gather(ctx)
	return err
}

// LastResult returns the summary of the most recent successful pass.
func (g *BasketGatherer) LastResult() Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Window returns the lookback range ending at the latest finished session.
// Sources that implement SessionClock are asked first; the weekday calendar
// is the fallback.
func (g *BasketGatherer) Window(ctx context.Context) DateRange {
	end := g.cal.LastSession(g.now())
	if clock, ok := g.source.(SessionClock); ok {
		d, err := clock.LatestSession(ctx)
		if err != nil {
			g.log.Warn("session clock failed, using weekday calendar", "error", err)
		} else {
			end = d
		}
	}
	return DateRange{Start: util.Lookback(end, g.opts.LookbackDays), End: end}
}

// Gather fetches the basket in batches on a bounded worker pool. A batch that
// still fails after retries aborts the pass.
func (g *BasketGatherer) Gather(ctx context.Context) (Result, error) {
	window := g.Window(ctx)

	var batches [][]string
	for i := 0; i < len(g.symbols); i += g.opts.BatchSize {
		end := min(i+g.opts.BatchSize, len(g.symbols))
		batches = append(batches, g.symbols[i:end])
	}

	g.log.Info("gather starting",
		"window", window.String(),
		"symbols", len(g.symbols),
		"batches", len(batches),
	)
	runStart := time.Now()

	var (
		mu  sync.Mutex
		hit = make(map[string]bool)
		n   int
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.MaxWorkers)
	for i, batch := range batches {
		eg.Go(func() error {
			var bars []domain.Bar
			err := util.Retry(ctx, g.opts.MaxAttempts, g.opts.RetryDelay, func(attempt int) error {
				if err := g.limiter.Wait(ctx); err != nil {
					return util.Permanent(err)
				}
				var err error
				bars, err = g.source.FetchDaily(ctx, batch, window)
				if err != nil {
					g.log.Warn("batch fetch failed", "batch", fmt.Sprintf("%d/%d", i+1, len(batches)), "attempt", attempt+1, "error", err)
				}
				return err
			})
			if err != nil {
				return fmt.Errorf("fetching batch %d/%d: %w", i+1, len(batches), err)
			}

			if len(bars) > 0 {
				if err := g.store.WriteBars(ctx, domain.MarketUS, bars); err != nil {
					return fmt.Errorf("writing batch %d/%d: %w", i+1, len(batches), err)
				}
			}

			mu.Lock()
			for _, b := range bars {
				hit[b.Symbol] = true
			}
			n += len(bars)
			mu.Unlock()

			g.log.Debug("batch done", "batch", fmt.Sprintf("%d/%d", i+1, len(batches)), "bars", len(bars))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Range: window, Bars: n}
	for _, sym := range g.symbols {
		if hit[sym] {
			res.Symbols = append(res.Symbols, sym)
		} else {
			res.Missing = append(res.Missing, sym)
		}
	}

	g.mu.Lock()
	g.last = res
	g.mu.Unlock()

	g.log.Info("gather complete",
		"bars", res.Bars,
		"symbols", len(res.Symbols),
		"missing", res.Missing,
		"elapsed", time.Since(runStart).Round(time.Millisecond),
	)
	return res, nil
}
