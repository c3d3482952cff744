package handlers

import (
	"context"
	"fmt"
	"path"
)

// Artifacts lists the metrics artifacts of the deployment. With runID set
// only that run is listed; with download set each artifact is printed.
func Artifacts(ctx context.Context, configPath, runID string, download bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if !cfg.Artifacts.Enabled() {
		return fmt.Errorf("artifacts are not configured for %s", cfg.Name)
	}

	store, err := newArtifactLister(cfg.Artifacts)
	if err != nil {
		return err
	}

	prefix := path.Join(cfg.Artifacts.Prefix, cfg.Name, runID)
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintf(stdout, "no artifacts under s3://%s/%s\n", store.Bucket(), prefix)
		return nil
	}

	for _, key := range keys {
		if !download {
			fmt.Fprintf(stdout, "s3://%s/%s\n", store.Bucket(), key)
			continue
		}
		data, err := store.Download(ctx, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "==> %s <==\n%s\n", key, data)
	}
	return nil
}
