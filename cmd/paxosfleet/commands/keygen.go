package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/paxosfleet/cmd/paxosfleet/handlers"
)

// Keygen returns the keygen command.
func Keygen() *cobra.Command {
	var (
		dir  string
		bits int
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate the admin SSH key pair",
		Long: `Keygen generates an RSA key pair for the benchmark admin user and prints
the base64 private key expected by access.private_key_b64 (or the
PAXOSFLEET_PRIVATE_KEY_B64 environment variable).`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Keygen(dir, bits)
		},
	}

	cmd.Flags().StringVarP(&dir, "out", "o", "", "Also write id_rsa and id_rsa.pub into this directory")
	cmd.Flags().IntVar(&bits, "bits", 4096, "RSA key size")

	return cmd
}
