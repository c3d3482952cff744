package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/paxosfleet/cmd/paxosfleet/handlers"
)

// Up returns the up command.
func Up(logOpts *handlers.LogOptions) *cobra.Command {
	var (
		configPath string
		opts       handlers.UpOptions
	)

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Provision machines and run the benchmark",
		Long: `Up provisions one master and, per location, one server and one client.

Every machine is created in its location, waits until its setup script
finished, receives the benchmark source via rsync and builds it. The master
starts once every server is installed, servers start once the master runs
and clients start once every server runs. Client metrics are collected at
the end and optionally uploaded to object storage.

Example:
  paxosfleet up -c paxosfleet.yaml
  paxosfleet up -c paxosfleet.yaml --teardown --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.LogOptions = *logOpts
			return handlers.Up(cmd.Context(), configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to deployment configuration file (required)")
	cmd.Flags().BoolVar(&opts.Teardown, "teardown", false, "Tear the deployment down after metrics were collected")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	cmd.Flags().BoolVar(&opts.SkipPrereqs, "skip-prereqs", false, "Skip the check for rsync and ssh")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
