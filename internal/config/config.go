package config

import (
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"
)

// Config holds the deployment configuration.
type Config struct {
	// Name prefixes every cloud resource and keys the local state.
	Name        string `mapstructure:"name" yaml:"name"`
	HCloudToken string `mapstructure:"hcloud_token" yaml:"hcloud_token,omitempty"`

	// Locations are short location codes (e.g. "or", "eu"). One server and
	// one client are deployed per location.
	Locations []string `mapstructure:"locations" yaml:"locations"`

	// MasterLocation selects where the master runs. Defaults to the first location.
	MasterLocation string `mapstructure:"master_location" yaml:"master_location,omitempty"`

	Machine   MachineConfig   `mapstructure:"machine" yaml:"machine"`
	Access    AccessConfig    `mapstructure:"access" yaml:"access"`
	Source    SourceConfig    `mapstructure:"source" yaml:"source"`
	Benchmark BenchmarkConfig `mapstructure:"benchmark" yaml:"benchmark"`
	Readiness ReadinessConfig `mapstructure:"readiness" yaml:"readiness"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts" yaml:"artifacts"`
	Events    EventsConfig    `mapstructure:"events" yaml:"events"`
	State     StateConfig     `mapstructure:"state" yaml:"state"`
}

// MachineConfig selects the server type and boot image for every machine.
type MachineConfig struct {
	ServerType string `mapstructure:"server_type" yaml:"server_type"`
	Image      string `mapstructure:"image" yaml:"image"`
}

// AccessConfig holds the administrative login used for remote commands.
type AccessConfig struct {
	Username      string `mapstructure:"username" yaml:"username"`
	PrivateKeyB64 string `mapstructure:"private_key_b64" yaml:"private_key_b64,omitempty"`
}

// PrivateKey decodes the base64 encoded private key.
func (a AccessConfig) PrivateKey() ([]byte, error) {
	if a.PrivateKeyB64 == "" {
		return nil, fmt.Errorf("private key is not configured")
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(a.PrivateKeyB64))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	return key, nil
}

// SourceConfig points at the local benchmark source tree that is synced to
// every machine.
type SourceConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// RemoteDir is the working directory on each machine, relative to the
// admin user's home. It doubles as the GOPATH of the benchmark build.
func (s SourceConfig) RemoteDir() string {
	base := path.Base(strings.TrimRight(s.Dir, "/"))
	if base == "." || base == "/" || base == "" {
		base = "epaxos"
	}
	return base
}

// BenchmarkConfig holds the flags passed to the benchmark processes.
type BenchmarkConfig struct {
	GoVersion     string        `mapstructure:"go_version" yaml:"go_version"`
	BasePort      int           `mapstructure:"base_port" yaml:"base_port"`
	EPaxos        *bool         `mapstructure:"epaxos" yaml:"epaxos,omitempty"`
	Locality      bool          `mapstructure:"locality" yaml:"locality"`
	Clients       int           `mapstructure:"clients" yaml:"clients"`
	WriteFraction float64       `mapstructure:"write_fraction" yaml:"write_fraction"`
	Theta         float64       `mapstructure:"theta" yaml:"theta"`
	Conflicts     int           `mapstructure:"conflicts" yaml:"conflicts"`
	Duration      time.Duration `mapstructure:"duration" yaml:"duration"`
	MetricsScript string        `mapstructure:"metrics_script" yaml:"metrics_script"`
	SetupScript   string        `mapstructure:"setup_script" yaml:"setup_script"`
}

// EPaxosEnabled reports whether servers run the EPaxos protocol. It
// defaults to true when unset.
func (b BenchmarkConfig) EPaxosEnabled() bool {
	return b.EPaxos == nil || *b.EPaxos
}

// ReadinessConfig bounds the wait for freshly created machines.
// MaxAttempts <= 0 waits until the context is cancelled.
type ReadinessConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	Interval    time.Duration `mapstructure:"interval" yaml:"interval"`
}

// ArtifactsConfig configures upload of metrics to S3 compatible object storage.
// Uploads are disabled when Bucket is empty.
type ArtifactsConfig struct {
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Region    string `mapstructure:"region" yaml:"region"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
}

// Enabled reports whether artifacts should be uploaded.
func (a ArtifactsConfig) Enabled() bool {
	return a.Bucket != ""
}

// EventsConfig configures publishing of deployment events to NATS.
// Publishing is disabled when URL is empty.
type EventsConfig struct {
	URL     string `mapstructure:"url" yaml:"url"`
	Subject string `mapstructure:"subject" yaml:"subject"`
}

// StateConfig configures the local state database.
type StateConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// DefaultBenchmark returns the benchmark settings whose zero value is a
// meaningful choice. Parse decodes over it, so an explicit
// write_fraction, theta or conflicts of 0 is kept.
func DefaultBenchmark() BenchmarkConfig {
	return BenchmarkConfig{
		WriteFraction: DefaultWriteFraction,
		Theta:         DefaultTheta,
		Conflicts:     DefaultConflicts,
	}
}

// ApplyDefaults fills empty fields with their defaults. Fields preset by
// DefaultBenchmark are left alone.
func (c *Config) ApplyDefaults() {
	if c.MasterLocation == "" && len(c.Locations) > 0 {
		c.MasterLocation = c.Locations[0]
	}
	if c.Machine.ServerType == "" {
		c.Machine.ServerType = DefaultServerType
	}
	if c.Machine.Image == "" {
		c.Machine.Image = DefaultImage
	}
	if c.Access.Username == "" {
		c.Access.Username = DefaultUsername
	}

	b := &c.Benchmark
	if b.GoVersion == "" {
		b.GoVersion = DefaultGoVersion
	}
	if b.BasePort == 0 {
		b.BasePort = DefaultBasePort
	}
	if b.Clients == 0 {
		b.Clients = DefaultClients
	}
	if b.MetricsScript == "" {
		b.MetricsScript = DefaultMetricsScript
	}
	if b.SetupScript == "" {
		b.SetupScript = DefaultSetupScript
	}

	if c.Readiness.Interval == 0 {
		c.Readiness.Interval = 2 * time.Second
	}
	if c.Artifacts.Enabled() && c.Artifacts.Region == "" {
		c.Artifacts.Region = DefaultArtifactRegion
	}
	if c.Events.Subject == "" {
		c.Events.Subject = DefaultEventsSubject
	}
	if c.State.Dir == "" {
		c.State.Dir = DefaultStateDir
	}
}
