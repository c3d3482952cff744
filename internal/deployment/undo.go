package deployment

import (
	"context"
	"fmt"

	"github.com/imamik/paxosfleet/internal/config"
	"github.com/imamik/paxosfleet/internal/graph"
)

// Undoer reverses teardown records against the cloud and remote shells.
type Undoer struct {
	cloud    Cloud
	shell    Shell
	timeouts *config.Timeouts
}

// NewUndoer creates an undoer. shell may be nil when only destroy records
// are expected; command records then fail.
func NewUndoer(cloud Cloud, shell Shell, timeouts *config.Timeouts) *Undoer {
	if timeouts == nil {
		timeouts = config.LoadTimeouts()
	}
	return &Undoer{cloud: cloud, shell: shell, timeouts: timeouts}
}

// Undo implements graph.Undoer.
func (u *Undoer) Undo(ctx context.Context, td graph.Teardown) error {
	switch td.Kind {
	case graph.KindCommand:
		if u.shell == nil {
			return fmt.Errorf("no shell to run %q on %s", td.Command, td.Host)
		}
		ctx, cancel := context.WithTimeout(ctx, u.timeouts.Command)
		defer cancel()
		_, err := u.shell.Execute(ctx, td.Host, td.Command)
		return err
	case graph.KindDestroy:
		if u.cloud == nil {
			return fmt.Errorf("no cloud to destroy %s", td.Resource)
		}
		ctx, cancel := context.WithTimeout(ctx, u.timeouts.Delete)
		defer cancel()
		return u.cloud.DeleteServer(ctx, td.Resource)
	default:
		return fmt.Errorf("unknown teardown kind %q", td.Kind)
	}
}
