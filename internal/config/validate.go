package config

import (
	"fmt"
	"regexp"
	"slices"
)

var namePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,30}[a-z0-9])?$`)

// Validate checks the configuration for common errors and returns a detailed error if validation fails.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !namePattern.MatchString(c.Name) {
		return fmt.Errorf("name %q must be lowercase alphanumeric with dashes, at most 32 characters", c.Name)
	}
	if c.HCloudToken == "" {
		return fmt.Errorf("hcloud_token is required (or set %s)", EnvHCloudToken)
	}
	if c.Access.PrivateKeyB64 == "" {
		return fmt.Errorf("access.private_key_b64 is required (or set %s)", EnvPrivateKeyB64)
	}
	if c.Source.Dir == "" {
		return fmt.Errorf("source.dir is required")
	}

	if err := c.validateLocations(); err != nil {
		return fmt.Errorf("location validation failed: %w", err)
	}
	if err := c.validateBenchmark(); err != nil {
		return fmt.Errorf("benchmark validation failed: %w", err)
	}
	if err := c.validateArtifacts(); err != nil {
		return fmt.Errorf("artifacts validation failed: %w", err)
	}

	return nil
}

// validateLocations checks that the location set is non-empty, free of
// duplicates and contains the master location. Whether a code maps to a
// known zone is decided by the deployment package.
func (c *Config) validateLocations() error {
	if len(c.Locations) == 0 {
		return fmt.Errorf("at least one location is required")
	}
	seen := make(map[string]bool, len(c.Locations))
	for _, loc := range c.Locations {
		if loc == "" {
			return fmt.Errorf("location codes cannot be empty")
		}
		if seen[loc] {
			return fmt.Errorf("duplicate location %q", loc)
		}
		seen[loc] = true
	}
	if c.MasterLocation != "" && !slices.Contains(c.Locations, c.MasterLocation) {
		return fmt.Errorf("master_location %q is not one of %v", c.MasterLocation, c.Locations)
	}
	return nil
}

func (c *Config) validateBenchmark() error {
	b := c.Benchmark
	if b.WriteFraction < 0 || b.WriteFraction > 1 {
		return fmt.Errorf("write_fraction must be between 0 and 1, got %v", b.WriteFraction)
	}
	if b.Clients < 0 {
		return fmt.Errorf("clients must be positive, got %d", b.Clients)
	}
	if b.BasePort < 1 || b.BasePort > 65000 {
		return fmt.Errorf("base_port %d out of range", b.BasePort)
	}
	if b.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	return nil
}

func (c *Config) validateArtifacts() error {
	a := c.Artifacts
	if !a.Enabled() {
		return nil
	}
	if a.Endpoint == "" {
		return fmt.Errorf("endpoint is required when bucket is set")
	}
	if a.AccessKey == "" || a.SecretKey == "" {
		return fmt.Errorf("access_key and secret_key are required when bucket is set (or set %s and %s)",
			EnvArtifactAccessKey, EnvArtifactSecretKey)
	}
	return nil
}
