// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/paxosfleet/cmd/paxosfleet/handlers"
)

// Root returns the root command for the paxosfleet CLI.
func Root() *cobra.Command {
	var logOpts handlers.LogOptions

	cmd := &cobra.Command{
		Use:           "paxosfleet",
		Short:         "Run multi-region EPaxos benchmarks on Hetzner Cloud",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&logOpts.Level, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logOpts.Format, "log-format", handlers.LogFormatAuto, "Log format (auto, console, json)")

	// Deployment lifecycle
	cmd.AddCommand(Up(&logOpts))
	cmd.AddCommand(Down(&logOpts))
	cmd.AddCommand(Outputs())
	cmd.AddCommand(Artifacts())

	// Utility commands
	cmd.AddCommand(Keygen())
	cmd.AddCommand(Version())

	return cmd
}
