package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"sp500dash/internal/export"
	"sp500dash/internal/report"
)

type exportCmd struct {
	criteriaFlags
	out    string
	format string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the dashboard to an xlsx workbook or html page" }
func (*exportCmd) Usage() string {
	return `export -o <file> [-format xlsx|html] [filter flags]

  Computes the dashboard from the local store with the same filters as
  "report" and writes it to a file.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.criteriaFlags.SetFlags(f)
	f.StringVar(&c.out, "o", "", "output file (required)")
	f.StringVar(&c.format, "format", "xlsx", "xlsx or html")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.out == "" {
		fmt.Fprintln(os.Stderr, "Error: -o is required.")
		return subcommands.ExitUsageError
	}
	if c.format != "xlsx" && c.format != "html" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q.\n", c.format)
		return subcommands.ExitUsageError
	}

	svc, closeFn, err := localService(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dashboard: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	b, err := localUpdate(ctx, svc, &c.criteriaFlags, "export")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	f, err := os.Create(c.out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", c.out, err)
		return subcommands.ExitFailure
	}
	if c.format == "html" {
		var page []byte
		if page, err = report.HTML(svc.Title(), b); err == nil {
			_, err = f.Write(page)
		}
	} else {
		err = export.WriteWorkbook(f, b)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.out, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("wrote %s (%d rows)\n", c.out, b.Stats.Rows)
	return subcommands.ExitSuccess
}
