package handlers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/paxosfleet/internal/util/keygen"
)

// writeFile writes data to a file (for testing injection).
var writeFile = os.WriteFile

// Keygen generates the admin key pair. With dir set, the private key is
// written to dir/id_rsa and the public key to dir/id_rsa.pub; the base64
// private key for access.private_key_b64 is always printed.
func Keygen(dir string, bits int) error {
	pair, err := keygen.GenerateRSAKeyPair(bits)
	if err != nil {
		return err
	}

	if dir != "" {
		if err := writeFile(filepath.Join(dir, "id_rsa"), pair.PrivateKey, 0o600); err != nil {
			return fmt.Errorf("failed to write private key: %w", err)
		}
		if err := writeFile(filepath.Join(dir, "id_rsa.pub"), pair.PublicKey, 0o644); err != nil {
			return fmt.Errorf("failed to write public key: %w", err)
		}
	}

	fingerprint, err := keygen.Fingerprint(pair.PrivateKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "fingerprint: %s\n", fingerprint)
	fmt.Fprintf(stdout, "private_key_b64: %s\n", pair.PrivateKeyB64())
	return nil
}
