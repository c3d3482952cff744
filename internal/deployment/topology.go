package deployment

import (
	"fmt"
	"slices"

	"github.com/imamik/paxosfleet/internal/config"
)

// Topology is one master plus one server and one client per location.
type Topology struct {
	Master    *Instance
	Servers   map[string]*Instance
	Clients   map[string]*Instance
	Locations []string
}

// NewTopology builds the instances for locations with the master in masterLocation.
func NewTopology(locations []string, masterLocation string, settings Settings) (*Topology, error) {
	if len(locations) == 0 {
		return nil, fmt.Errorf("topology requires at least one location")
	}

	t := &Topology{
		Servers:   make(map[string]*Instance, len(locations)),
		Clients:   make(map[string]*Instance, len(locations)),
		Locations: slices.Clone(locations),
	}

	for _, loc := range locations {
		if loc == "" {
			return nil, fmt.Errorf("empty location code")
		}
		if _, ok := t.Servers[loc]; ok {
			return nil, fmt.Errorf("duplicate location %q", loc)
		}
		server, err := NewInstance(RoleServer, loc, settings)
		if err != nil {
			return nil, err
		}
		client, err := NewInstance(RoleClient, loc, settings)
		if err != nil {
			return nil, err
		}
		t.Servers[loc] = server
		t.Clients[loc] = client
	}

	if _, ok := t.Servers[masterLocation]; !ok {
		return nil, fmt.Errorf("master location %q is not one of %v", masterLocation, locations)
	}
	master, err := NewInstance(RoleMaster, masterLocation, settings)
	if err != nil {
		return nil, err
	}
	t.Master = master

	return t, nil
}

// TopologyFromConfig builds the topology described by cfg.
func TopologyFromConfig(cfg *config.Config, settings Settings) (*Topology, error) {
	return NewTopology(cfg.Locations, cfg.MasterLocation, settings)
}

// Instances returns the master followed by servers and clients in location order.
func (t *Topology) Instances() []*Instance {
	out := []*Instance{t.Master}
	for _, loc := range t.Locations {
		out = append(out, t.Servers[loc])
	}
	for _, loc := range t.Locations {
		out = append(out, t.Clients[loc])
	}
	return out
}
