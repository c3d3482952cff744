package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// resolveImage returns the image matching the server type's architecture.
func (c *RealClient) resolveImage(ctx context.Context, imageType string, serverTypeObj *hcloud.ServerType) (*hcloud.Image, error) {
	imageObj, _, err := c.client.Image.GetForArchitecture(ctx, imageType, serverTypeObj.Architecture)
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	if imageObj == nil {
		return nil, fmt.Errorf("image not found: %s (%s)", imageType, serverTypeObj.Architecture)
	}
	if imageObj.Status != "" && imageObj.Status != hcloud.ImageStatusAvailable {
		return nil, fmt.Errorf("image %s is %s", imageType, imageObj.Status)
	}
	return imageObj, nil
}

// resolveSSHKeys resolves SSH key names/IDs to SSH key objects.
func (c *RealClient) resolveSSHKeys(ctx context.Context, sshKeys []string) ([]*hcloud.SSHKey, error) {
	var sshKeyObjs []*hcloud.SSHKey
	for _, key := range sshKeys {
		keyObj, _, err := c.client.SSHKey.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to get ssh key %s: %w", key, err)
		}
		if keyObj == nil {
			return nil, fmt.Errorf("ssh key not found: %s", key)
		}
		sshKeyObjs = append(sshKeyObjs, keyObj)
	}
	return sshKeyObjs, nil
}

// resolveLocation resolves a location name to a location object.
func (c *RealClient) resolveLocation(ctx context.Context, location string) (*hcloud.Location, error) {
	if location == "" {
		return nil, nil
	}

	locObj, _, err := c.client.Location.Get(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to get location %s: %w", location, err)
	}
	if locObj == nil {
		return nil, fmt.Errorf("location not found: %s", location)
	}
	return locObj, nil
}

// serverAddresses extracts the public IPv4 and first private network address.
func serverAddresses(s *hcloud.Server) ServerAddresses {
	addrs := ServerAddresses{Public: ServerIPv4(s)}
	if s != nil && len(s.PrivateNet) > 0 && s.PrivateNet[0].IP != nil {
		addrs.Private = s.PrivateNet[0].IP.String()
	}
	return addrs
}

// ServerIPv4 extracts the public IPv4 address from a server, or empty string if not set.
func ServerIPv4(s *hcloud.Server) string {
	if s != nil && s.PublicNet.IPv4.IP != nil {
		return s.PublicNet.IPv4.IP.String()
	}
	return ""
}
