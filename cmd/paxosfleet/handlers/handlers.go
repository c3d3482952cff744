// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"io"
	"os"

	"github.com/imamik/paxosfleet/internal/config"
	"github.com/imamik/paxosfleet/internal/deployment"
	"github.com/imamik/paxosfleet/internal/events"
	"github.com/imamik/paxosfleet/internal/graph"
	"github.com/imamik/paxosfleet/internal/platform/hcloud"
	"github.com/imamik/paxosfleet/internal/platform/rsync"
	"github.com/imamik/paxosfleet/internal/platform/s3"
	"github.com/imamik/paxosfleet/internal/platform/ssh"
	"github.com/imamik/paxosfleet/internal/provisioning"
	"github.com/imamik/paxosfleet/internal/state"
	"github.com/imamik/paxosfleet/internal/util/prerequisites"
)

// Ledger is the persisted deployment state the handlers use.
type Ledger interface {
	graph.Ledger
	Teardowns() ([]graph.Teardown, error)
	Delete(node string) error
	SaveOutputs(outputs []provisioning.Output) error
	Outputs() ([]provisioning.Output, error)
	SetRunID(id string) error
	RunID() (string, error)
	Reset() error
	Close() error
}

// EventSink is an observer that must be closed when the command ends.
type EventSink interface {
	provisioning.Observer
	Err() error
	Close()
}

// ArtifactLister reads uploaded artifacts.
type ArtifactLister interface {
	Bucket() string
	List(ctx context.Context, prefix string) ([]string, error)
	Download(ctx context.Context, key string) ([]byte, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig loads and validates the configuration file.
	loadConfig = config.LoadFile

	// newInfraClient creates a new infrastructure client.
	newInfraClient = func(token string, timeouts *config.Timeouts) hcloud.InfrastructureManager {
		return hcloud.NewRealClient(token, hcloud.WithTimeouts(timeouts))
	}

	// newShell creates the remote command runner.
	newShell = func(cfg *config.Config, key []byte, timeouts *config.Timeouts) (deployment.Shell, error) {
		return ssh.NewClient(&ssh.Config{
			User:        cfg.Access.Username,
			PrivateKey:  key,
			DialTimeout: timeouts.SSHDial,
			MaxRetries:  timeouts.SSHMaxRetries,
		})
	}

	// newSyncer creates the source syncer and its cleanup.
	newSyncer = func(cfg *config.Config, key []byte) (deployment.Syncer, func() error, error) {
		s, err := rsync.New(cfg.Access.Username, key)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}

	// newArtifactStore creates the artifact store for an enabled artifacts section.
	newArtifactStore = func(cfg config.ArtifactsConfig) (deployment.ArtifactStore, error) {
		return s3.NewStoreFromConfig(cfg)
	}

	// newArtifactLister opens the artifact store for reading.
	newArtifactLister = func(cfg config.ArtifactsConfig) (ArtifactLister, error) {
		return s3.NewStoreFromConfig(cfg)
	}

	// openLedger opens the local state of a deployment.
	openLedger = func(dir, name string) (Ledger, error) {
		return state.Open(dir, name)
	}

	// connectEvents connects the optional event publisher.
	connectEvents = func(cfg config.EventsConfig, deployment string) (EventSink, error) {
		return events.Connect(cfg.URL, cfg.Subject, deployment)
	}

	// checkDefaultPrereqs runs prerequisite checks.
	checkDefaultPrereqs = prerequisites.CheckDefault

	// stdout receives rendered command output.
	stdout io.Writer = os.Stdout
)
