// Command sp500-cli renders the dashboard in the terminal, exports it, or
// queries a running sp500-server over gRPC.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

const version = "0.2.0"

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&reportCmd{}, "dashboard")
	commander.Register(&exportCmd{}, "dashboard")
	commander.Register(&remoteCmd{}, "server")
	commander.Register(&optionsCmd{}, "server")
	commander.Register(&versionCmd{}, "")

	flag.Parse()
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(int(commander.Execute(ctx)))
}
