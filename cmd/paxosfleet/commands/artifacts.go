package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/paxosfleet/cmd/paxosfleet/handlers"
)

// Artifacts returns the artifacts command.
func Artifacts() *cobra.Command {
	var (
		configPath string
		runID      string
		download   bool
	)

	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "List uploaded client metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Artifacts(cmd.Context(), configPath, runID, download)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to deployment configuration file (required)")
	cmd.Flags().StringVar(&runID, "run", "", "Only list artifacts of this run id")
	cmd.Flags().BoolVar(&download, "download", false, "Print the content of every artifact")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
