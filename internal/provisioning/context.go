package provisioning

import (
	"context"

	"github.com/imamik/paxosfleet/internal/config"
)

// Context wraps all dependencies and state needed for a deployment phase.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Observer Observer
	Timeouts *config.Timeouts
}

// NewContext creates a new deployment context.
func NewContext(ctx context.Context, cfg *config.Config, observer Observer) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(),
		Observer: observer,
		Timeouts: config.LoadTimeouts(),
	}
}
