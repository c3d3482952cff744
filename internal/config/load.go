package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and environment
// secrets, and validates the result.
func Parse(data []byte) (*Config, error) {
	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg := Config{Benchmark: DefaultBenchmark()}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(rawConfig); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnv fills secrets that were left out of the file.
func (c *Config) applyEnv() {
	if c.HCloudToken == "" {
		c.HCloudToken = os.Getenv(EnvHCloudToken)
	}
	if c.Access.PrivateKeyB64 == "" {
		c.Access.PrivateKeyB64 = os.Getenv(EnvPrivateKeyB64)
	}
	if c.Artifacts.AccessKey == "" {
		c.Artifacts.AccessKey = os.Getenv(EnvArtifactAccessKey)
	}
	if c.Artifacts.SecretKey == "" {
		c.Artifacts.SecretKey = os.Getenv(EnvArtifactSecretKey)
	}
}
