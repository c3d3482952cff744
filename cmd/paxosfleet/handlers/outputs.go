package handlers

import (
	"context"
	"encoding/json"
	"fmt"
)

// Outputs prints the outputs saved by the last `up`.
func Outputs(_ context.Context, configPath string, asJSON bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ledger, err := openLedger(cfg.State.Dir, cfg.Name)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	outputs, err := ledger.Outputs()
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outputs)
	}

	_, err = fmt.Fprint(stdout, renderOutputs(cfg.Name, outputs))
	return err
}
