package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/paxosfleet/internal/future"
	"github.com/imamik/paxosfleet/internal/provisioning"
)

// Recorder receives node and teardown measurements.
type Recorder interface {
	ObserveNode(stage string, state State, d time.Duration)
	ObserveTeardown(kind string, err error)
}

// Ledger persists teardown records as they are recorded.
type Ledger interface {
	Record(td Teardown) error
}

// Option configures a Graph.
type Option func(*Graph)

// WithObserver sets the observer receiving node events.
func WithObserver(o provisioning.Observer) Option {
	return func(g *Graph) {
		g.observer = o
	}
}

// WithRecorder sets the recorder receiving node measurements.
func WithRecorder(r Recorder) Option {
	return func(g *Graph) {
		g.recorder = r
	}
}

// WithLedger persists every teardown record before the owning node resolves.
func WithLedger(l Ledger) Option {
	return func(g *Graph) {
		g.ledger = l
	}
}

// Graph is a set of scheduled operations.
type Graph struct {
	observer provisioning.Observer
	recorder Recorder
	ledger   Ledger

	mu        sync.Mutex
	nodes     map[string]*Node
	order     []*Node
	sequence  int
	teardowns []Teardown
	undone    map[string]bool

	wg sync.WaitGroup
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		observer: provisioning.NewLogObserver(logr.Discard()),
		nodes:    make(map[string]*Node),
		undone:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Schedule registers op and returns its node. Nothing runs synchronously;
// the action starts once every predecessor succeeded. Scheduling a key that
// is already registered returns the existing node and ignores op.
func (g *Graph) Schedule(ctx context.Context, op Operation) *Node {
	if op.Key == "" {
		panic("graph: operation key is required")
	}

	g.mu.Lock()
	if n, ok := g.nodes[op.Key]; ok {
		g.mu.Unlock()
		return n
	}
	n := newNode(op)
	g.nodes[op.Key] = n
	g.order = append(g.order, n)
	g.wg.Add(1)
	g.mu.Unlock()

	g.event(provisioning.EventNodeScheduled, n, "scheduled")

	future.After(op.After...).Subscribe(func(err error) {
		if err != nil {
			g.skip(n, err)
			return
		}
		go g.execute(ctx, n)
	})
	return n
}

func (g *Graph) execute(ctx context.Context, n *Node) {
	defer g.wg.Done()

	g.event(provisioning.EventNodeStarted, n, "started")
	start := time.Now()

	var (
		outcome Outcome
		err     error
	)
	if n.op.Action != nil {
		outcome, err = n.op.Action(ctx)
	}
	d := time.Since(start)

	if err != nil {
		g.fail(n, outcome.Output, err, d)
		return
	}
	if err := g.succeed(n, outcome, d); err != nil {
		g.fail(n, outcome.Output, err, d)
		return
	}
	g.event(provisioning.EventNodeSucceeded, n, fmt.Sprintf("succeeded in %v", d.Round(time.Millisecond)))
	g.observe(n.op.Stage, Succeeded, d)
}

func (g *Graph) fail(n *Node, output string, err error, d time.Duration) {
	nodeErr := &NodeError{
		Key:     n.op.Key,
		Machine: n.op.Machine,
		Stage:   n.op.Stage,
		Output:  output,
		Err:     err,
	}
	n.settle(Failed, output, nodeErr, d)
	g.observer.Event(provisioning.Event{
		Type:     provisioning.EventNodeFailed,
		Phase:    n.op.Stage,
		Resource: n.op.Key,
		Message:  nodeErr.Error(),
		Fields:   map[string]string{"machine": n.op.Machine, "output": output},
	})
	g.observe(n.op.Stage, Failed, d)
}

// succeed assigns the resolution sequence and records the teardown before
// the node's result is resolved, so dependents always resolve later.
// A teardown the ledger could not persist fails the node instead: the
// action already took effect, so the record stays in memory for Unwind,
// but a later process would not know to undo it.
func (g *Graph) succeed(n *Node, outcome Outcome, d time.Duration) error {
	g.mu.Lock()
	g.sequence++
	seq := g.sequence
	var td *Teardown
	if outcome.Teardown != nil {
		rec := *outcome.Teardown
		rec.Node = n.op.Key
		if rec.Machine == "" {
			rec.Machine = n.op.Machine
		}
		rec.Sequence = seq
		g.teardowns = append(g.teardowns, rec)
		td = &rec
	}
	g.mu.Unlock()

	n.mu.Lock()
	n.sequence = seq
	n.mu.Unlock()

	if td != nil && g.ledger != nil {
		if err := g.ledger.Record(*td); err != nil {
			return fmt.Errorf("failed to persist teardown %s: %w", td, err)
		}
	}

	n.settle(Succeeded, outcome.Output, nil, d)
	return nil
}

func (g *Graph) skip(n *Node, cause error) {
	defer g.wg.Done()

	err := &DependencyError{Key: n.op.Key, Err: cause}
	n.settle(Skipped, "", err, 0)
	g.observer.Event(provisioning.Event{
		Type:     provisioning.EventNodeSkipped,
		Phase:    n.op.Stage,
		Resource: n.op.Key,
		Message:  err.Error(),
		Fields:   map[string]string{"machine": n.op.Machine},
	})
	g.observe(n.op.Stage, Skipped, 0)
}

func (g *Graph) event(t provisioning.EventType, n *Node, msg string) {
	g.observer.Event(provisioning.Event{
		Type:     t,
		Phase:    n.op.Stage,
		Resource: n.op.Key,
		Message:  msg,
		Fields:   map[string]string{"machine": n.op.Machine},
	})
}

func (g *Graph) observe(stage string, state State, d time.Duration) {
	if g.recorder != nil {
		g.recorder.ObserveNode(stage, state, d)
	}
}

// Node returns the node registered under key.
func (g *Graph) Node(key string) (*Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[key]
	return n, ok
}

// Nodes returns every node in registration order.
func (g *Graph) Nodes() []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Node, len(g.order))
	copy(out, g.order)
	return out
}

// Wait blocks until every scheduled node settled or ctx is done.
// It returns the joined errors of failed nodes; skipped nodes are not
// reported separately since their cause already is.
func (g *Graph) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	var errs []error
	for _, n := range g.Nodes() {
		if n.State() == Failed {
			errs = append(errs, n.Err())
		}
	}
	return errors.Join(errs...)
}

// Teardowns returns the recorded teardowns, most recently resolved first.
func (g *Graph) Teardowns() []Teardown {
	g.mu.Lock()
	out := make([]Teardown, len(g.teardowns))
	copy(out, g.teardowns)
	g.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	return out
}

// Unwind runs every recorded teardown that was not unwound before, most
// recently resolved first. Each record is claimed before it runs, so a
// failed teardown is not retried by a later call.
func (g *Graph) Unwind(ctx context.Context, undoer Undoer) error {
	var pending []Teardown
	g.mu.Lock()
	for _, td := range g.teardowns {
		if !g.undone[td.Node] {
			g.undone[td.Node] = true
			pending = append(pending, td)
		}
	}
	g.mu.Unlock()

	return Unwind(ctx, pending, undoer, g.observer, g.recorder)
}
