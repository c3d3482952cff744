package deployment

import (
	"github.com/imamik/paxosfleet/internal/future"
	hcloud_internal "github.com/imamik/paxosfleet/internal/platform/hcloud"
)

// Machine holds the late-bound addresses of a provisioned instance.
// Both values settle exactly once, when the create call returns.
type Machine struct {
	Instance *Instance
	External *future.Value[string]
	Internal *future.Value[string]
}

func newMachine(inst *Instance) *Machine {
	return &Machine{
		Instance: inst,
		External: future.New[string](),
		Internal: future.New[string](),
	}
}

// resolve settles both addresses. The internal address falls back to the
// public one when the server has no private network.
func (m *Machine) resolve(addrs hcloud_internal.ServerAddresses) {
	m.External.Resolve(addrs.Public)
	if addrs.Private != "" {
		m.Internal.Resolve(addrs.Private)
		return
	}
	m.Internal.Resolve(addrs.Public)
}

func (m *Machine) fail(err error) {
	m.External.Reject(err)
	m.Internal.Reject(err)
}
