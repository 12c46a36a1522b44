package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"sp500dash/internal/api"
	"sp500dash/internal/dashboard"
)

const defaultAddr = "localhost:9090"

type remoteCmd struct {
	criteriaFlags
	addr string
	path string
}

func (*remoteCmd) Name() string     { return "remote" }
func (*remoteCmd) Synopsis() string { return "compute the dashboard on a running server over gRPC" }
func (*remoteCmd) Usage() string {
	return `remote [-addr host:port] [filter flags] [-path <jsonpath>]

  Sends the filters to sp500-server and prints the bundle as JSON. Filters
  that are not given keep the server's defaults.
`
}

func (c *remoteCmd) SetFlags(f *flag.FlagSet) {
	c.criteriaFlags.SetFlags(f)
	f.StringVar(&c.addr, "addr", defaultAddr, "gRPC address of sp500-server")
	f.StringVar(&c.path, "path", "", "jsonpath expression applied to the output")
}

func (c *remoteCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := api.Dial(c.addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to %s: %v\n", c.addr, err)
		return subcommands.ExitFailure
	}
	defer client.Close()

	var crit *dashboard.Criteria
	if c.criteriaFlags != (criteriaFlags{}) {
		// Criteria are sent whole, so start from the server's choices.
		opts, err := client.Options(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		base := dashboard.Criteria{
			Sector:   dashboard.AllSectors,
			PriceMin: opts.Price.Min,
			PriceMax: opts.Price.Max,
			Start:    opts.Start,
			End:      opts.End,
		}
		v, err := c.apply(base)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		crit = &v
	}

	s, err := client.UpdateRaw(ctx, crit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	out, err := selectJSON(s.AsMap(), c.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(out))
	return subcommands.ExitSuccess
}

type optionsCmd struct {
	addr string
}

func (*optionsCmd) Name() string     { return "options" }
func (*optionsCmd) Synopsis() string { return "list the filter choices offered by a running server" }
func (*optionsCmd) Usage() string {
	return `options [-addr host:port]
`
}

func (c *optionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", defaultAddr, "gRPC address of sp500-server")
}

func (c *optionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := api.Dial(c.addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to %s: %v\n", c.addr, err)
		return subcommands.ExitFailure
	}
	defer client.Close()

	o, err := client.Options(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("sectors: %v\n", o.Sectors)
	fmt.Printf("symbols: %v\n", o.Symbols)
	fmt.Printf("price:   %.0f..%.0f step %.0f\n", o.Price.Min, o.Price.Max, o.Price.Step)
	return subcommands.ExitSuccess
}

type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "print the CLI version" }
func (*versionCmd) Usage() string          { return "version\n" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}
func (*versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Printf("sp500-cli %s\n", version)
	return subcommands.ExitSuccess
}
