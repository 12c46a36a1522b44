// Package report renders a dashboard bundle as Markdown, and from there as
// HTML or styled terminal text.
package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"sp500dash/internal/dashboard"
)

// Markdown renders b as a GitHub-flavoured Markdown document.
func Markdown(title string, b dashboard.Bundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	cards := b.Summary.Cards()
	sb.WriteString("| Symbols | Average price | Max price | Min price |\n")
	sb.WriteString("|---:|---:|---:|---:|\n")
	fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n\n", cards[0], cards[1], cards[2], cards[3])

	sb.WriteString("## Statistics\n\n")
	for _, line := range b.Stats.Lines {
		fmt.Fprintf(&sb, "- %s\n", line)
	}
	sb.WriteString("\n")
	if b.NoData {
		return sb.String()
	}

	sb.WriteString("## Latest prices\n\n")
	sb.WriteString("| Symbol | Sector | Close | Volume | Date |\n")
	sb.WriteString("|---|---|---:|---:|---|\n")
	for _, r := range b.Latest {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			r.Symbol, r.Sector, dashboard.FormatUSD(r.Close), dashboard.FormatVolume(float64(r.Volume)), r.Date)
	}
	sb.WriteString("\n")

	sb.WriteString("## Sectors\n\n")
	sb.WriteString("| Sector | Rows | Volatility | Mean return |\n")
	sb.WriteString("|---|---:|---:|---:|\n")
	means := make(map[string]float64, len(b.SectorReturns))
	for _, r := range b.SectorReturns {
		means[r.Sector] = r.MeanReturn
	}
	vols := make(map[string]*float64, len(b.Volatility))
	for _, v := range b.Volatility {
		vols[v.Sector] = v.Volatility
	}
	for _, s := range b.Sectors {
		var mean *float64
		if m, ok := means[s.Sector]; ok {
			mean = &m
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			s.Sector, dashboard.FormatCount(s.Count), formatVol(vols[s.Sector]), dashboard.FormatPct(mean))
	}
	sb.WriteString("\n")

	writeRanking(&sb, "Average close", b.PriceComparison, dashboard.FormatUSD)
	writeRanking(&sb, "Average volume (millions)", b.Volume, func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	})
	return sb.String()
}

func writeRanking(sb *strings.Builder, title string, entries []dashboard.RankEntry, format func(float64) string) {
	fmt.Fprintf(sb, "## %s\n\n", title)
	sb.WriteString("| # | Symbol | Average | Min | Max |\n")
	sb.WriteString("|---:|---|---:|---:|---:|\n")
	for i, e := range entries {
		fmt.Fprintf(sb, "| %d | %s | %s | %s | %s |\n", i+1, e.Symbol, format(e.Avg), format(e.Min), format(e.Max))
	}
	sb.WriteString("\n")
}

func formatVol(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

// ---------------------------------------------------------------------------
// Renderers
// ---------------------------------------------------------------------------

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts the Markdown report to a standalone HTML page.
func HTML(title string, b dashboard.Bundle) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(title, b)), &body); err != nil {
		return nil, fmt.Errorf("converting report: %w", err)
	}
	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n", html.EscapeString(title))
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")
	return page.Bytes(), nil
}

// Terminal renders the Markdown report for a terminal. style is a glamour
// standard style ("dark", "light", "notty", ...); width wraps text, 0 keeps
// glamour's default.
func Terminal(title string, b dashboard.Bundle, style string, width int) (string, error) {
	if style == "" {
		style = "dark"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(Markdown(title, b))
	if err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return out, nil
}
