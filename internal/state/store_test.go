package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/paxosfleet/internal/graph"
	"github.com/imamik/paxosfleet/internal/provisioning"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_TeardownsNewestFirst(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Record(graph.Teardown{Node: "provision/master-or", Kind: graph.KindDestroy, Resource: "bench-master-or", Sequence: 1}))
	require.NoError(t, s.Record(graph.Teardown{Node: "run/server-or", Kind: graph.KindCommand, Command: "kill", Sequence: 7}))
	require.NoError(t, s.Record(graph.Teardown{Node: "run/master-or", Kind: graph.KindCommand, Command: "kill", Sequence: 4}))

	tds, err := s.Teardowns()
	require.NoError(t, err)
	require.Len(t, tds, 3)
	assert.Equal(t, "run/server-or", tds[0].Node)
	assert.Equal(t, "run/master-or", tds[1].Node)
	assert.Equal(t, "bench-master-or", tds[2].Resource)
}

func TestStore_DeleteAndRecordValidation(t *testing.T) {
	s := newStore(t)

	assert.Error(t, s.Record(graph.Teardown{Kind: graph.KindCommand}))

	require.NoError(t, s.Record(graph.Teardown{Node: "run/client-eu", Kind: graph.KindCommand, Sequence: 2}))
	require.NoError(t, s.Delete("run/client-eu"))
	require.NoError(t, s.Delete("run/never-recorded"))

	tds, err := s.Teardowns()
	require.NoError(t, err)
	assert.Empty(t, tds)
}

func TestStore_Outputs(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.SaveOutputs([]provisioning.Output{
		{Key: "public_ip-server-or", Role: "server", Location: "or", Stage: "provision", Value: "203.0.113.10"},
		{Key: "metrics-eu", Role: "client", Location: "eu", Stage: "metrics", Error: "exit status 1"},
	}))
	require.NoError(t, s.SaveOutputs([]provisioning.Output{
		{Key: "metrics-eu", Role: "client", Location: "eu", Stage: "metrics", Value: "throughput 900"},
	}))

	outputs, err := s.Outputs()
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	assert.Equal(t, "metrics-eu", outputs[0].Key)
	assert.Equal(t, "throughput 900", outputs[0].Value)
	assert.Empty(t, outputs[0].Error)
	assert.Equal(t, "public_ip-server-or", outputs[1].Key)
}

func TestStore_RunIDAndReset(t *testing.T) {
	s := newStore(t)

	_, err := s.RunID()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetRunID("run-42"))
	id, err := s.RunID()
	require.NoError(t, err)
	assert.Equal(t, "run-42", id)

	require.NoError(t, s.Record(graph.Teardown{Node: "run/master-or", Sequence: 1}))
	require.NoError(t, s.Reset())

	tds, err := s.Teardowns()
	require.NoError(t, err)
	assert.Empty(t, tds)
	_, err = s.RunID()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, "bench")
	require.NoError(t, err)
	require.NoError(t, s.Record(graph.Teardown{Node: "provision/server-eu", Kind: graph.KindDestroy, Resource: "bench-server-eu", Sequence: 3}))
	require.NoError(t, s.Close())

	s, err = Open(dir, "bench")
	require.NoError(t, err)
	defer s.Close()

	tds, err := s.Teardowns()
	require.NoError(t, err)
	require.Len(t, tds, 1)
	assert.Equal(t, "bench-server-eu", tds[0].Resource)

	_, err = Open(dir, "")
	assert.Error(t, err)
}
