package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"sp500dash/internal/api"
	"sp500dash/internal/app"
	"sp500dash/internal/dashboard"
	"sp500dash/internal/report"
)

type reportCmd struct {
	criteriaFlags
	asJSON bool
	path   string
	style  string
	width  int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "render the dashboard from the local store" }
func (*reportCmd) Usage() string {
	return `report [-sector <name>] [-symbols <a,b>] [-price-min <v>] [-price-max <v>] [-start <date>] [-end <date>] [-json [-path <jsonpath>]]

  Loads the configured basket from the local store, applies the filters and
  prints the dashboard as styled markdown. With -json the raw bundle is
  printed instead, optionally narrowed by a jsonpath expression such as
  "$.summary.avg_price".
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.criteriaFlags.SetFlags(f)
	f.BoolVar(&c.asJSON, "json", false, "print the bundle as JSON")
	f.StringVar(&c.path, "path", "", "jsonpath expression applied to the JSON output")
	f.StringVar(&c.style, "style", "dark", "glamour style: dark, light, notty, ascii")
	f.IntVar(&c.width, "width", 100, "word wrap width")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, closeFn, err := localService(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dashboard: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	b, err := localUpdate(ctx, svc, &c.criteriaFlags, "cli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	if c.asJSON || c.path != "" {
		out, err := selectJSON(b, c.path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(out))
		return subcommands.ExitSuccess
	}

	out, err := report.Terminal(svc.Title(), b, c.style, c.width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

// localService loads the panel from the configured store and wraps it in a
// dashboard service. The returned func closes the store.
func localService(ctx context.Context) (*api.DashboardService, func(), error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	// Keep the terminal output clean.
	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		cfg.Logging.Level = "warn"
	}
	a, err := app.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	r := a.Refresher(false, nil)
	if err := r.Reload(ctx); err != nil {
		a.Close()
		return nil, nil, err
	}
	return api.NewDashboardService(r, a.Settings(), nil, a.Log), func() { a.Close() }, nil
}

func localUpdate(ctx context.Context, svc *api.DashboardService, f *criteriaFlags, surface string) (dashboard.Bundle, error) {
	base, err := svc.DefaultCriteria()
	if err != nil {
		return dashboard.Bundle{}, err
	}
	crit, err := f.apply(base)
	if err != nil {
		return dashboard.Bundle{}, err
	}
	return svc.Update(ctx, surface, crit)
}
