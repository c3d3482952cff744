package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/imamik/paxosfleet/internal/provisioning"
)

// Teardown kinds.
const (
	// KindCommand stops a process by running Command on Host.
	KindCommand = "command"
	// KindDestroy deletes the cloud server named by Resource.
	KindDestroy = "destroy"
)

// Teardown is the recorded counterpart of a successful operation.
type Teardown struct {
	Node     string `json:"node"`
	Machine  string `json:"machine"`
	Kind     string `json:"kind"`
	Resource string `json:"resource,omitempty"`
	Host     string `json:"host,omitempty"`
	User     string `json:"user,omitempty"`
	Command  string `json:"command,omitempty"`
	Sequence int    `json:"sequence"`
}

func (t Teardown) String() string {
	if t.Kind == KindDestroy {
		return fmt.Sprintf("destroy %s", t.Resource)
	}
	return fmt.Sprintf("%s@%s: %s", t.User, t.Host, t.Command)
}

// Undoer executes teardowns.
type Undoer interface {
	Undo(ctx context.Context, td Teardown) error
}

// UndoFunc adapts a function to the Undoer interface.
type UndoFunc func(ctx context.Context, td Teardown) error

// Undo implements Undoer.
func (f UndoFunc) Undo(ctx context.Context, td Teardown) error { return f(ctx, td) }

// Unwind runs records most recently resolved first. A failing teardown is
// reported and the walk continues; all failures are returned joined. Records
// sharing a node key run once. recorder may be nil.
func Unwind(ctx context.Context, records []Teardown, undoer Undoer, observer provisioning.Observer, recorder Recorder) error {
	ordered := make([]Teardown, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Sequence > ordered[j].Sequence })

	seen := make(map[string]bool, len(ordered))
	var errs []error
	for i, td := range ordered {
		if seen[td.Node] {
			continue
		}
		seen[td.Node] = true

		observer.Event(provisioning.Event{
			Type:     provisioning.EventTeardownStarted,
			Phase:    "teardown",
			Resource: td.Node,
			Message:  td.String(),
			Fields:   map[string]string{"machine": td.Machine, "kind": td.Kind},
		})

		err := undoer.Undo(ctx, td)
		if recorder != nil {
			recorder.ObserveTeardown(td.Kind, err)
		}
		if err != nil {
			err = fmt.Errorf("teardown %s: %w", td.Node, err)
			errs = append(errs, err)
			observer.Event(provisioning.Event{
				Type:     provisioning.EventTeardownFailed,
				Phase:    "teardown",
				Resource: td.Node,
				Message:  err.Error(),
				Fields:   map[string]string{"machine": td.Machine, "kind": td.Kind},
			})
		} else {
			observer.Event(provisioning.Event{
				Type:     provisioning.EventTeardownCompleted,
				Phase:    "teardown",
				Resource: td.Node,
				Message:  "completed",
				Fields:   map[string]string{"machine": td.Machine, "kind": td.Kind},
			})
		}
		observer.Progress("teardown", i+1, len(ordered))
	}
	return errors.Join(errs...)
}
