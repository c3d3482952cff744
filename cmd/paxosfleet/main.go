// Package main is the entry point for the paxosfleet CLI.
//
// paxosfleet provisions a multi-region EPaxos benchmark on Hetzner Cloud:
// one master plus a server and a client per location. It installs the
// benchmark, starts the roles in dependency order, collects client metrics
// and tears everything down again.
//
// Commands: up, down, outputs, artifacts, keygen, version.
//
// For detailed usage information, run:
//
//	paxosfleet --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/paxosfleet/cmd/paxosfleet/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
