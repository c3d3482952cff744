package deployment

import (
	"context"

	hcloud_internal "github.com/imamik/paxosfleet/internal/platform/hcloud"
)

// Cloud creates and deletes machines.
type Cloud interface {
	CreateServer(ctx context.Context, opts hcloud_internal.ServerCreateOpts) (hcloud_internal.ServerAddresses, error)
	DeleteServer(ctx context.Context, name string) error
}

// Shell runs a command on a host as the deployment's admin user and
// returns its combined output. A non-zero exit is an error.
type Shell interface {
	Execute(ctx context.Context, host, command string) (string, error)
}

// Syncer copies a local directory into the admin user's home on host.
type Syncer interface {
	Sync(ctx context.Context, host, localDir string) (string, error)
}

// ArtifactStore keeps result artifacts.
type ArtifactStore interface {
	Upload(ctx context.Context, key string, data []byte) error
}
