package graph

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/paxosfleet/internal/future"
	"github.com/imamik/paxosfleet/internal/provisioning"
	testutil "github.com/imamik/paxosfleet/internal/testing"
)

type undoLog struct {
	mu    sync.Mutex
	nodes []string
	fail  map[string]error
}

func (u *undoLog) Undo(_ context.Context, td Teardown) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.nodes = append(u.nodes, td.Node)
	return u.fail[td.Node]
}

func withTeardown(cmd string) Action {
	return func(context.Context) (Outcome, error) {
		return Outcome{Teardown: &Teardown{Kind: KindCommand, Host: "203.0.113.1", User: "epaxos", Command: cmd}}, nil
	}
}

type memoryLedger struct {
	mu      sync.Mutex
	records []Teardown
}

func (l *memoryLedger) Record(td Teardown) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, td)
	return nil
}

func TestTeardowns_RecordedOnlyOnSuccess(t *testing.T) {
	ctx := testutil.TestContext(t)
	ledger := &memoryLedger{}
	g := New(WithLedger(ledger))

	master := g.Schedule(ctx, Operation{Key: "run/master-or", Machine: "master-or", Action: withTeardown("kill $(pidof bin/master)")})
	g.Schedule(ctx, Operation{Key: "run/server-or", After: []future.Signal{master}, Action: withTeardown("kill $(pidof bin/server)")})
	g.Schedule(ctx, Operation{Key: "run/server-eu", Action: func(context.Context) (Outcome, error) {
		return Outcome{Teardown: &Teardown{Kind: KindCommand, Command: "kill"}}, errors.New("ssh: handshake failed")
	}})

	require.Error(t, g.Wait(ctx))

	tds := g.Teardowns()
	require.Len(t, tds, 2)
	assert.Equal(t, "run/server-or", tds[0].Node)
	assert.Equal(t, "run/master-or", tds[1].Node)
	assert.Equal(t, "master-or", tds[1].Machine, "machine defaults to the operation's machine")
	assert.Greater(t, tds[0].Sequence, tds[1].Sequence)

	assert.Len(t, ledger.records, 2)
}

type failingLedger struct{ err error }

func (l failingLedger) Record(Teardown) error { return l.err }

func TestTeardowns_UnpersistedRecordFailsNode(t *testing.T) {
	ctx := testutil.TestContext(t)
	observer := testutil.NewRecordingObserver()
	g := New(WithObserver(observer), WithLedger(failingLedger{err: errors.New("disk full")}))

	master := g.Schedule(ctx, Operation{Key: "run/master-or", Machine: "master-or", Action: withTeardown("kill $(pidof bin/master)")})
	server := g.Schedule(ctx, Operation{Key: "run/server-or", After: []future.Signal{master}, Action: withTeardown("kill $(pidof bin/server)")})

	err := g.Wait(ctx)
	require.Error(t, err)

	assert.Equal(t, Failed, master.State())
	var nodeErr *NodeError
	require.ErrorAs(t, master.Err(), &nodeErr)
	assert.Equal(t, "run/master-or", nodeErr.Key)
	assert.ErrorContains(t, master.Err(), "failed to persist teardown")
	assert.ErrorContains(t, master.Err(), "disk full")
	assert.Equal(t, Skipped, server.State())
	assert.Equal(t, []string{"run/master-or"}, observer.Resources(provisioning.EventNodeFailed))

	// The process is running, so this process can still stop it.
	tds := g.Teardowns()
	require.Len(t, tds, 1)
	assert.Equal(t, "run/master-or", tds[0].Node)

	undo := &undoLog{}
	require.NoError(t, g.Unwind(ctx, undo))
	assert.Equal(t, []string{"run/master-or"}, undo.nodes)
}

// master + 2 servers + 2 clients; one failing teardown does not block the rest.
func TestUnwind_ReverseOrderBestEffort(t *testing.T) {
	ctx := testutil.TestContext(t)
	observer := testutil.NewRecordingObserver()
	rec := newRecorder()
	g := New(WithObserver(observer), WithRecorder(rec))

	master := g.Schedule(ctx, Operation{Key: "run/master-or", Action: withTeardown("kill $(pidof bin/master)")})
	serverOr := g.Schedule(ctx, Operation{Key: "run/server-or", After: []future.Signal{master}, Action: withTeardown("kill $(pidof bin/server)")})
	serverEu := g.Schedule(ctx, Operation{Key: "run/server-eu", After: []future.Signal{master}, Action: withTeardown("kill $(pidof bin/server)")})
	servers := []future.Signal{serverOr, serverEu}
	g.Schedule(ctx, Operation{Key: "run/client-or", After: servers, Action: withTeardown("kill $(pidof bin/client)")})
	g.Schedule(ctx, Operation{Key: "run/client-eu", After: servers, Action: withTeardown("kill $(pidof bin/client)")})
	require.NoError(t, g.Wait(ctx))

	want := make([]string, 0, 5)
	for _, td := range g.Teardowns() {
		want = append(want, td.Node)
	}
	require.Len(t, want, 5)
	assert.Equal(t, "run/master-or", want[4], "master resolved first, so it is torn down last")

	undo := &undoLog{fail: map[string]error{"run/server-eu": errors.New("connection refused")}}
	err := g.Unwind(ctx, undo)
	require.Error(t, err)
	assert.ErrorContains(t, err, "teardown run/server-eu")

	assert.Equal(t, want, undo.nodes, "every teardown issued once, most recently resolved first")
	assert.Equal(t, []string{"run/server-eu"}, observer.Resources(provisioning.EventTeardownFailed))
	assert.Len(t, observer.EventsOfType(provisioning.EventTeardownCompleted), 4)
	assert.Equal(t, 5, rec.teardowns[KindCommand])

	// A second unwind has nothing left to do.
	require.NoError(t, g.Unwind(ctx, undo))
	assert.Len(t, undo.nodes, 5)
}

func TestUnwind_DeduplicatesRecords(t *testing.T) {
	records := []Teardown{
		{Node: "provision/master-or", Kind: KindDestroy, Resource: "bench-master-or", Sequence: 1},
		{Node: "run/master-or", Kind: KindCommand, Sequence: 4},
		{Node: "run/master-or", Kind: KindCommand, Sequence: 4},
	}
	undo := &undoLog{}
	err := Unwind(context.Background(), records, undo, testutil.NewRecordingObserver(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"run/master-or", "provision/master-or"}, undo.nodes)
}

func TestUndoFunc(t *testing.T) {
	var got Teardown
	f := UndoFunc(func(_ context.Context, td Teardown) error {
		got = td
		return nil
	})
	require.NoError(t, f.Undo(context.Background(), Teardown{Node: "x"}))
	assert.Equal(t, "x", got.Node)
}

func TestTeardown_String(t *testing.T) {
	assert.Equal(t, "destroy bench-master-or", Teardown{Kind: KindDestroy, Resource: "bench-master-or"}.String())
	assert.Equal(t, "epaxos@203.0.113.1: kill 1", Teardown{Kind: KindCommand, User: "epaxos", Host: "203.0.113.1", Command: "kill 1"}.String())
}
