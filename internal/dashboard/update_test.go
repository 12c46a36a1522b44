package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"sp500dash/internal/domain"
	"sp500dash/internal/store"
)

func TestUpdateNilPanel(t *testing.T) {
	if _, err := Update(nil, allCriteria()); !errors.Is(err, ErrNilPanel) {
		t.Errorf("Update(nil) error = %v, want ErrNilPanel", err)
	}
}

func TestUpdateBundle(t *testing.T) {
	b, err := Update(samplePanel(), allCriteria())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if b.NoData {
		t.Fatal("NoData set for a non-empty view")
	}
	if b.Summary.Count != 3 {
		t.Errorf("Summary.Count = %d, want 3 distinct symbols", b.Summary.Count)
	}
	if b.Summary.MaxPrice != 210 || b.Summary.MinPrice != 99 {
		t.Errorf("Summary = %+v", b.Summary)
	}
	if b.Stats.Rows != 8 || b.Stats.Sectors != 2 {
		t.Errorf("Stats = %+v", b.Stats)
	}
	if b.Stats.FirstDate.String() != "2024-01-02" || b.Stats.LastDate.String() != "2024-01-04" {
		t.Errorf("date span = %s..%s", b.Stats.FirstDate, b.Stats.LastDate)
	}
	if len(b.Stats.Lines) != 9 || b.Stats.Lines[0] != "Rows: 8" {
		t.Errorf("Lines = %q", b.Stats.Lines)
	}
	if len(b.Latest) != 3 || len(b.PriceComparison) != 3 || len(b.Volume) != 3 || len(b.Series) != 3 {
		t.Errorf("table sizes: latest=%d price=%d volume=%d series=%d",
			len(b.Latest), len(b.PriceComparison), len(b.Volume), len(b.Series))
	}
}

func TestUpdateTopNOption(t *testing.T) {
	b, err := UpdateWith(samplePanel(), allCriteria(), UpdateOptions{TopN: 2})
	if err != nil {
		t.Fatalf("UpdateWith: %v", err)
	}
	if len(b.PriceComparison) != 2 || len(b.Volume) != 2 {
		t.Errorf("rankings not truncated: %d/%d", len(b.PriceComparison), len(b.Volume))
	}
}

func TestUpdateIdempotent(t *testing.T) {
	p := samplePanel()
	before := p.Records()
	c := allCriteria()
	c.Sector = "Technology"

	b1, _ := Update(p, c)
	b2, _ := Update(p, c)
	if !reflect.DeepEqual(b1, b2) {
		t.Error("repeated Update calls returned different bundles")
	}
	if !reflect.DeepEqual(before, p.Records()) {
		t.Error("Update mutated the panel")
	}
}

func TestUpdateEmptySentinel(t *testing.T) {
	c := allCriteria()
	c.Sector = "Energy"
	b, err := Update(samplePanel(), c)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !b.NoData {
		t.Error("NoData = false for an empty view")
	}
	if b.Summary != (Summary{}) {
		t.Errorf("Summary = %+v, want zero", b.Summary)
	}
	cards := b.Summary.Cards()
	if cards != [4]string{"0", "$0.00", "$0.00", "$0.00"} {
		t.Errorf("Cards = %q", cards)
	}
	if len(b.Stats.Lines) != 1 || b.Stats.Lines[0] != NoDataMessage {
		t.Errorf("Lines = %q", b.Stats.Lines)
	}
	tables := []int{len(b.Sectors), len(b.Volatility), len(b.Latest), len(b.SectorReturns), len(b.PriceComparison), len(b.Volume), len(b.Series)}
	for i, n := range tables {
		if n != 0 {
			t.Errorf("table %d has %d rows, want 0", i, n)
		}
	}
	if b.Latest == nil || b.Series == nil {
		t.Error("empty tables should be non-nil")
	}
}

func TestOptionsAndDefaultCriteria(t *testing.T) {
	p := samplePanel()
	slider := PriceSlider{Min: 0, Max: 500, Step: 10}

	opts := Options(p, nil, slider)
	wantSectors := []string{AllSectors, "Energy", "Finance", "Technology"}
	if !reflect.DeepEqual(opts.Sectors, wantSectors) {
		t.Errorf("Sectors = %v, want %v", opts.Sectors, wantSectors)
	}
	if !reflect.DeepEqual(opts.Symbols, []string{"AAPL", "JPM", "MSFT"}) {
		t.Errorf("Symbols = %v", opts.Symbols)
	}
	if opts.Start.String() != "2024-01-02" || opts.End.String() != "2024-01-04" {
		t.Errorf("date bounds = %s..%s", opts.Start, opts.End)
	}

	// Non-adjacent duplicates collapse to the first occurrence.
	opts = Options(p, []string{"msft", "aapl", " MSFT", "AAPL"}, slider)
	if !reflect.DeepEqual(opts.Symbols, []string{"MSFT", "AAPL"}) {
		t.Errorf("explicit choices = %v", opts.Symbols)
	}

	c := DefaultCriteria(p, 0, 500)
	if err := c.Validate(); err != nil {
		t.Errorf("DefaultCriteria does not validate: %v", err)
	}
	if got := len(Filter(p, c)); got != p.Len() {
		t.Errorf("DefaultCriteria keeps %d of %d rows", got, p.Len())
	}
}

func TestLoadSectorMap(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "sectors.csv")
	csvData := "symbol,sector\naapl, Technology\nJPM,Finance\nBAD\n,Energy\n"
	if err := os.WriteFile(csvPath, []byte(csvData), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadSectorMap(csvPath)
	if err != nil {
		t.Fatalf("LoadSectorMap(csv): %v", err)
	}
	if len(m) != 2 || m["AAPL"] != "Technology" || m["JPM"] != "Finance" {
		t.Errorf("csv map = %v", m)
	}

	yamlPath := filepath.Join(dir, "sectors.yaml")
	if err := os.WriteFile(yamlPath, []byte("XOM: Energy\nBRK.B: Finance\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err = LoadSectorMap(yamlPath)
	if err != nil {
		t.Fatalf("LoadSectorMap(yaml): %v", err)
	}
	if len(m) != 2 || m["BRK.B"] != "Finance" {
		t.Errorf("yaml map = %v", m)
	}

	if _, err := LoadSectorMap(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestResolveSectors(t *testing.T) {
	inline := map[string]string{"aapl": "Technology", "JPM": " ", "XOM": "Oil"}
	m, err := ResolveSectors(inline, "")
	if err != nil {
		t.Fatalf("ResolveSectors: %v", err)
	}
	if len(m) != 2 || m["AAPL"] != "Technology" || m["XOM"] != "Oil" {
		t.Errorf("inline map = %v", m)
	}

	path := filepath.Join(t.TempDir(), "sectors.yaml")
	if err := os.WriteFile(path, []byte("XOM: Energy\nJPM: Finance\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err = ResolveSectors(inline, path)
	if err != nil {
		t.Fatalf("ResolveSectors(file): %v", err)
	}
	if m["XOM"] != "Energy" || m["JPM"] != "Finance" || m["AAPL"] != "Technology" {
		t.Errorf("merged map = %v", m)
	}

	if _, err := ResolveSectors(inline, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLoadPanelFromStore(t *testing.T) {
	ctx := context.Background()
	bs := store.NewParquetStore(t.TempDir())
	bars := []domain.Bar{
		bar("AAPL", "2024-01-02", 100, 1),
		bar("AAPL", "2024-01-03", 110, 1),
		bar("JPM", "2023-06-01", 150, 1),
	}
	if err := bs.WriteBars(ctx, domain.MarketUS, bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := LoadPanel(ctx, bs, []string{"AAPL", "JPM", "NOPE"}, testSectors,
		mustDate("2024-01-01"), mustDate("2024-12-31"), log)
	if err != nil {
		t.Fatalf("LoadPanel: %v", err)
	}
	if p.Len() != 2 {
		t.Errorf("Len = %d, want 2 (JPM out of window, NOPE absent)", p.Len())
	}
	if syms := p.Symbols(); len(syms) != 1 || syms[0] != "AAPL" {
		t.Errorf("Symbols = %v", syms)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{FormatUSD(0), "$0.00"},
		{FormatUSD(103), "$103.00"},
		{FormatUSD(1234.567), "$1,234.57"},
		{FormatCount(1234567), "1,234,567"},
		{FormatVolume(12_300_000), "12.3M"},
		{FormatPct(nil), "n/a"},
		{FormatOptionalUSD(nil), "n/a"},
	}
	for i, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("case %d: got %q, want %q", i, tt.got, tt.want)
		}
	}
	ten := 10.0
	if got := FormatPct(&ten); got != "+10.00%" {
		t.Errorf("FormatPct(10) = %q", got)
	}
}
