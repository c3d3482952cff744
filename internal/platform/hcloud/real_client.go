package hcloud

import (
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/paxosfleet/internal/config"
)

// RealClient talks to the Hetzner Cloud API.
type RealClient struct {
	client   *hcloud.Client
	timeouts *config.Timeouts
}

var _ InfrastructureManager = (*RealClient)(nil)

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts overrides the timeouts loaded from the environment.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) { c.timeouts = t }
}

// WithHCloudClient replaces the API client, typically with one pointed at
// a test server.
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *RealClient) { c.client = hc }
}

// NewRealClient returns a client authenticated with token. Requests carry
// the paxosfleet user agent and poll actions with exponential backoff.
func NewRealClient(token string, opts ...ClientOption) *RealClient {
	c := &RealClient{timeouts: config.LoadTimeouts()}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = hcloud.NewClient(
			hcloud.WithToken(token),
			hcloud.WithApplication("paxosfleet", ""),
			hcloud.WithPollOpts(hcloud.PollOpts{
				BackoffFunc: hcloud.ExponentialBackoff(2, 500*time.Millisecond),
			}),
		)
	}
	return c
}

// HCloudClient returns the underlying API client.
func (c *RealClient) HCloudClient() *hcloud.Client {
	return c.client
}
