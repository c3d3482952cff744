package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/paxosfleet/cmd/paxosfleet/handlers"
)

// Outputs returns the outputs command.
func Outputs() *cobra.Command {
	var (
		configPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "outputs",
		Short: "Show the outputs of the last deployment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Outputs(cmd.Context(), configPath, asJSON)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to deployment configuration file (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print outputs as JSON")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
