package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/paxosfleet/cmd/paxosfleet/handlers"
)

// Down returns the down command.
func Down(logOpts *handlers.LogOptions) *cobra.Command {
	var (
		configPath string
		opts       handlers.DownOptions
	)

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop the benchmark and delete every machine",
		Long: `Down reverses a deployment recorded by up.

Benchmark processes are stopped and servers deleted in the reverse order in
which they were started. Servers that still carry the deployment label and
the deployment's SSH key are removed afterwards. A failed step is reported
and never stops the remaining ones; rerunning down resumes where it failed.

Example:
  paxosfleet down -c paxosfleet.yaml --yes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.LogOptions = *logOpts
			return handlers.Down(cmd.Context(), configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to deployment configuration file (required)")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
