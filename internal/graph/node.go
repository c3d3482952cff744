package graph

import (
	"context"
	"sync"
	"time"

	"github.com/imamik/paxosfleet/internal/future"
)

// State is the lifecycle state of a node.
type State int

const (
	// Pending nodes wait for predecessors or are executing.
	Pending State = iota
	// Succeeded nodes ran their action without error.
	Succeeded
	// Failed nodes ran their action and it returned an error.
	Failed
	// Skipped nodes never ran because a predecessor failed.
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Action is the work of a node. It runs at most once, after every
// predecessor succeeded.
type Action func(ctx context.Context) (Outcome, error)

// Outcome is what a successful or failed action captured.
type Outcome struct {
	Output string
	// Teardown is recorded only if the action succeeds.
	Teardown *Teardown
}

// Operation describes a node to schedule.
type Operation struct {
	// Key identifies the node. Scheduling an existing key returns the
	// existing node.
	Key string
	// Machine names the instance the operation targets.
	Machine string
	// Stage labels the operation for events, metrics and reports.
	Stage string
	// After lists the signals that must resolve successfully first.
	After []future.Signal
	// Action may be nil, in which case the node succeeds with empty output.
	Action Action
}

// Node is a scheduled operation.
type Node struct {
	op     Operation
	result *future.Value[string]

	mu       sync.Mutex
	state    State
	output   string
	err      error
	sequence int
	duration time.Duration
}

func newNode(op Operation) *Node {
	return &Node{
		op:     op,
		result: future.New[string](),
	}
}

// Key returns the node's key.
func (n *Node) Key() string { return n.op.Key }

// Machine returns the name of the targeted instance.
func (n *Node) Machine() string { return n.op.Machine }

// Stage returns the node's stage label.
func (n *Node) Stage() string { return n.op.Stage }

// Result resolves to the node's captured output, or rejects with a
// *NodeError or *DependencyError.
func (n *Node) Result() *future.Value[string] { return n.result }

// Subscribe implements future.Signal so nodes can be used as predecessors.
func (n *Node) Subscribe(fn func(error)) { n.result.Subscribe(fn) }

// State returns the current state.
func (n *Node) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Output returns the captured output. Failed nodes keep their output.
func (n *Node) Output() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.output
}

// Err returns the failure or skip error, or nil.
func (n *Node) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

// Sequence returns the resolution sequence number of a succeeded node, or 0.
func (n *Node) Sequence() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sequence
}

// Duration returns how long the action ran.
func (n *Node) Duration() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.duration
}

func (n *Node) settle(state State, output string, err error, d time.Duration) {
	n.mu.Lock()
	n.state = state
	n.output = output
	n.err = err
	n.duration = d
	n.mu.Unlock()

	if err != nil {
		n.result.Reject(err)
		return
	}
	n.result.Resolve(output)
}
