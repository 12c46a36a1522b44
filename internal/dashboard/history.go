package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"sp500dash/internal/domain"
	"sp500dash/internal/store"
)

// LoadBars reads the stored daily bars of every symbol over [start, end].
// Symbols with no stored bars are logged and skipped, so the result may
// cover fewer symbols than requested.
func LoadBars(ctx context.Context, bs store.BarStore, symbols []string, start, end domain.Date, log *slog.Logger) ([]domain.Bar, error) {
	var all []domain.Bar
	var missing []string
	for _, sym := range symbols {
		bars, err := bs.ReadBars(ctx, domain.MarketUS, sym, start, end)
		if err != nil {
			return nil, fmt.Errorf("reading bars for %s: %w", sym, err)
		}
		if len(bars) == 0 {
			missing = append(missing, sym)
			continue
		}
		all = append(all, bars...)
	}
	if len(missing) > 0 {
		log.Info("symbols without stored bars", "count", len(missing), "symbols", missing)
	}
	return all, nil
}

// LoadPanel reads the basket from the store and builds a Panel.
func LoadPanel(ctx context.Context, bs store.BarStore, symbols []string, sectors map[string]string, start, end domain.Date, log *slog.Logger) (*Panel, error) {
	bars, err := LoadBars(ctx, bs, symbols, start, end, log)
	if err != nil {
		return nil, err
	}
	p := NewPanel(bars, sectors)
	first, last, _ := p.DateRange()
	log.Info("panel loaded",
		"records", p.Len(),
		"symbols", len(p.Symbols()),
		"first", first.String(),
		"last", last.String(),
	)
	return p, nil
}
