// Package hcloud provides a wrapper around the Hetzner Cloud API.
package hcloud

import (
	"context"
)

// ServerCreateOpts holds all parameters for creating an HCloud server.
type ServerCreateOpts struct {
	Name       string
	ImageType  string
	ServerType string
	Location   string
	SSHKeys    []string
	Labels     map[string]string
	UserData   string
}

// ServerAddresses are the addresses a server was created with.
// Private is empty when the server is not attached to a private network.
type ServerAddresses struct {
	Public  string
	Private string
}

// ServerInfo describes an existing server.
type ServerInfo struct {
	ID       int64
	Name     string
	PublicIP string
	Labels   map[string]string
}

// ServerProvisioner defines the interface for provisioning servers.
type ServerProvisioner interface {
	// CreateServer creates a server and waits until it is running.
	CreateServer(ctx context.Context, opts ServerCreateOpts) (ServerAddresses, error)
	// DeleteServer deletes the server. Deleting a missing server succeeds.
	DeleteServer(ctx context.Context, name string) error
	// ListServers returns the servers matching the label selector.
	ListServers(ctx context.Context, labelSelector string) ([]ServerInfo, error)
}

// SSHKeyManager defines the interface for managing SSH keys.
type SSHKeyManager interface {
	EnsureSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (string, error)
	DeleteSSHKey(ctx context.Context, name string) error
}

// InfrastructureManager combines all infrastructure interfaces.
type InfrastructureManager interface {
	ServerProvisioner
	SSHKeyManager
}
