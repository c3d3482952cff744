package testing

import (
	"encoding/base64"
	"slices"
	"time"

	"github.com/imamik/paxosfleet/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with sensible defaults:
// deployment "test-bench" over locations or and eu, master in or.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			Name:        "test-bench",
			HCloudToken: "test-token",
			Locations:   []string{"or", "eu"},
			Access: config.AccessConfig{
				PrivateKeyB64: base64.StdEncoding.EncodeToString([]byte("test-private-key")),
			},
			Source:    config.SourceConfig{Dir: "/src/epaxos"},
			Benchmark: config.DefaultBenchmark(),
			Readiness: config.ReadinessConfig{
				MaxAttempts: 3,
				Interval:    time.Millisecond,
			},
		},
	}
}

// WithName sets the deployment name.
func (b *ConfigBuilder) WithName(name string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Name = name
	return nb
}

// WithLocations sets the deployment locations.
func (b *ConfigBuilder) WithLocations(locations ...string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Locations = slices.Clone(locations)
	return nb
}

// WithMasterLocation sets where the master runs.
func (b *ConfigBuilder) WithMasterLocation(location string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.MasterLocation = location
	return nb
}

// WithPrivateKey sets the admin private key from PEM bytes.
func (b *ConfigBuilder) WithPrivateKey(pem []byte) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Access.PrivateKeyB64 = base64.StdEncoding.EncodeToString(pem)
	return nb
}

// WithReadiness sets the readiness polling bounds.
func (b *ConfigBuilder) WithReadiness(maxAttempts int, interval time.Duration) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Readiness = config.ReadinessConfig{MaxAttempts: maxAttempts, Interval: interval}
	return nb
}

// WithBenchmark replaces the benchmark settings.
func (b *ConfigBuilder) WithBenchmark(bench config.BenchmarkConfig) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Benchmark = bench
	return nb
}

// WithArtifacts enables artifact upload to bucket.
func (b *ConfigBuilder) WithArtifacts(bucket string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Artifacts = config.ArtifactsConfig{
		Bucket:    bucket,
		Endpoint:  "https://fsn1.your-objectstorage.com",
		AccessKey: "access",
		SecretKey: "secret",
	}
	return nb
}

// Build returns the config with defaults applied.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.clone().cfg
	cfg.ApplyDefaults()
	return &cfg
}

func (b *ConfigBuilder) clone() *ConfigBuilder {
	cfg := b.cfg
	cfg.Locations = slices.Clone(b.cfg.Locations)
	if b.cfg.Benchmark.EPaxos != nil {
		v := *b.cfg.Benchmark.EPaxos
		cfg.Benchmark.EPaxos = &v
	}
	return &ConfigBuilder{cfg: cfg}
}

// MinimalConfig returns a valid configuration with all defaults.
func MinimalConfig() *config.Config {
	return NewConfigBuilder().Build()
}
