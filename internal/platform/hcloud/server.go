package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/paxosfleet/internal/util/retry"
)

// CreateServer creates a server and waits for the create action.
func (c *RealClient) CreateServer(ctx context.Context, opts ServerCreateOpts) (ServerAddresses, error) {
	if opts.Name == "" {
		return ServerAddresses{}, fmt.Errorf("server name is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ServerCreate)
	defer cancel()

	createOpts, err := c.buildServerCreateOpts(ctx, opts)
	if err != nil {
		return ServerAddresses{}, err
	}

	result, err := c.createServerWithRetry(ctx, createOpts)
	if err != nil {
		return ServerAddresses{}, err
	}

	addrs := serverAddresses(result.Server)
	if addrs.Public == "" {
		return addrs, fmt.Errorf("server %s has no public IPv4", opts.Name)
	}
	return addrs, nil
}

// buildServerCreateOpts resolves names into API objects.
func (c *RealClient) buildServerCreateOpts(ctx context.Context, opts ServerCreateOpts) (hcloud.ServerCreateOpts, error) {
	serverTypeObj, _, err := c.client.ServerType.Get(ctx, opts.ServerType)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get server type: %w", err)
	}
	if serverTypeObj == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("server type not found: %s", opts.ServerType)
	}

	imageObj, err := c.resolveImage(ctx, opts.ImageType, serverTypeObj)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	sshKeyObjs, err := c.resolveSSHKeys(ctx, opts.SSHKeys)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	locObj, err := c.resolveLocation(ctx, opts.Location)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	return hcloud.ServerCreateOpts{
		Name:       opts.Name,
		ServerType: serverTypeObj,
		Image:      imageObj,
		SSHKeys:    sshKeyObjs,
		Labels:     opts.Labels,
		UserData:   opts.UserData,
		Location:   locObj,
		PublicNet: &hcloud.ServerCreatePublicNet{
			EnableIPv4: true,
			EnableIPv6: true,
		},
	}, nil
}

// createServerWithRetry creates a server, retrying transient API errors.
func (c *RealClient) createServerWithRetry(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, error) {
	var result hcloud.ServerCreateResult

	err := retry.WithExponentialBackoff(ctx, func() error {
		res, _, err := c.client.Server.Create(ctx, opts)
		if err != nil {
			if !retryableCreate(err) {
				return retry.Fatal(err)
			}
			return err
		}
		result = res
		return nil
	}, retry.WithMaxRetries(c.timeouts.RetryMaxAttempts), retry.WithInitialDelay(c.timeouts.RetryInitialDelay))
	if err != nil {
		return result, fmt.Errorf("failed to create server: %w", err)
	}

	if result.Action != nil {
		if err := c.client.Action.WaitFor(ctx, result.Action); err != nil {
			return result, fmt.Errorf("failed to wait for server creation: %w", err)
		}
	}
	return result, nil
}

// DeleteServer deletes the server with the given name.
func (c *RealClient) DeleteServer(ctx context.Context, name string) error {
	return (&DeleteOperation[*hcloud.Server]{
		Name:         name,
		ResourceType: "server",
		Get:          c.client.Server.Get,
		Delete: func(ctx context.Context, server *hcloud.Server) (*hcloud.Response, error) {
			_, resp, err := c.client.Server.DeleteWithResult(ctx, server)
			return resp, err
		},
	}).Execute(ctx, c)
}

// ListServers returns all servers matching the label selector.
func (c *RealClient) ListServers(ctx context.Context, labelSelector string) ([]ServerInfo, error) {
	servers, err := c.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: labelSelector},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}

	out := make([]ServerInfo, 0, len(servers))
	for _, s := range servers {
		out = append(out, ServerInfo{
			ID:       s.ID,
			Name:     s.Name,
			PublicIP: ServerIPv4(s),
			Labels:   s.Labels,
		})
	}
	return out, nil
}
