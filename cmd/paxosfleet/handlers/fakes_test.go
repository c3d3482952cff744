package handlers

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imamik/paxosfleet/internal/config"
	"github.com/imamik/paxosfleet/internal/deployment"
	"github.com/imamik/paxosfleet/internal/platform/hcloud"
	"github.com/imamik/paxosfleet/internal/provisioning"
	"github.com/imamik/paxosfleet/internal/state"
	testutil "github.com/imamik/paxosfleet/internal/testing"
	"github.com/imamik/paxosfleet/internal/util/keygen"
)

type fakeInfra struct {
	mu        sync.Mutex
	calls     []string
	servers   map[string]hcloud.ServerInfo
	leftover  []hcloud.ServerInfo
	deleteErr map[string]error
	keys      map[string]string
}

func newFakeInfra() *fakeInfra {
	return &fakeInfra{
		servers:   map[string]hcloud.ServerInfo{},
		deleteErr: map[string]error{},
		keys:      map[string]string{},
	}
}

func (f *fakeInfra) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeInfra) CreateServer(_ context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerAddresses, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create %s", opts.Name)
	f.servers[opts.Name] = hcloud.ServerInfo{Name: opts.Name, PublicIP: "pub-" + opts.Name, Labels: opts.Labels}
	return hcloud.ServerAddresses{Public: "pub-" + opts.Name}, nil
}

func (f *fakeInfra) DeleteServer(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete %s", name)
	if err := f.deleteErr[name]; err != nil {
		return err
	}
	delete(f.servers, name)
	return nil
}

func (f *fakeInfra) ListServers(_ context.Context, _ string) ([]hcloud.ServerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list")
	out := append([]hcloud.ServerInfo(nil), f.leftover...)
	f.leftover = nil
	return out, nil
}

func (f *fakeInfra) EnsureSSHKey(_ context.Context, name, publicKey string, _ map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ensure-key %s", name)
	f.keys[name] = publicKey
	return "1", nil
}

func (f *fakeInfra) DeleteSSHKey(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete-key %s", name)
	delete(f.keys, name)
	return nil
}

func (f *fakeInfra) log() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeInfra) deletes() []string {
	var out []string
	for _, c := range f.log() {
		if strings.HasPrefix(c, "delete ") {
			out = append(out, strings.TrimPrefix(c, "delete "))
		}
	}
	return out
}

type fakeShell struct {
	mu    sync.Mutex
	calls []string
}

func (s *fakeShell) Execute(_ context.Context, host, command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, host+": "+command)
	if strings.Contains(command, "client_metrics.py") {
		return "throughput 1200", nil
	}
	return "ok", nil
}

func (s *fakeShell) commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type fakeSyncer struct{}

func (fakeSyncer) Sync(_ context.Context, host, dir string) (string, error) {
	return "sent " + dir + " to " + host, nil
}

// sharedLedger keeps the in-memory store open across handler calls.
type sharedLedger struct {
	*state.Store
}

func (sharedLedger) Close() error { return nil }

type env struct {
	cfg    *config.Config
	infra  *fakeInfra
	shell  *fakeShell
	ledger *state.Store
	out    *bytes.Buffer
}

// setup replaces every factory with fakes for the duration of the test.
func setup(t *testing.T, cfg *config.Config) *env {
	t.Helper()

	if cfg == nil {
		pair, err := keygen.GenerateRSAKeyPair(2048)
		require.NoError(t, err)
		cfg = testutil.NewConfigBuilder().WithPrivateKey(pair.PrivateKey).Build()
	}

	store, err := state.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	e := &env{cfg: cfg, infra: newFakeInfra(), shell: &fakeShell{}, ledger: store, out: &bytes.Buffer{}}

	origLoad, origInfra, origShell, origSyncer := loadConfig, newInfraClient, newShell, newSyncer
	origLedger, origEvents, origRunID, origStdout := openLedger, connectEvents, newRunID, stdout
	origConfirm, origArtifacts, origLister := confirmDestroy, newArtifactStore, newArtifactLister
	t.Cleanup(func() {
		loadConfig, newInfraClient, newShell, newSyncer = origLoad, origInfra, origShell, origSyncer
		openLedger, connectEvents, newRunID, stdout = origLedger, origEvents, origRunID, origStdout
		confirmDestroy, newArtifactStore, newArtifactLister = origConfirm, origArtifacts, origLister
	})

	loadConfig = func(string) (*config.Config, error) { return e.cfg, nil }
	newInfraClient = func(string, *config.Timeouts) hcloud.InfrastructureManager { return e.infra }
	newShell = func(*config.Config, []byte, *config.Timeouts) (deployment.Shell, error) { return e.shell, nil }
	newSyncer = func(*config.Config, []byte) (deployment.Syncer, func() error, error) {
		return fakeSyncer{}, func() error { return nil }, nil
	}
	openLedger = func(string, string) (Ledger, error) { return sharedLedger{e.ledger}, nil }
	connectEvents = func(config.EventsConfig, string) (EventSink, error) {
		t.Fatal("events are not configured")
		return nil, nil
	}
	newRunID = func() string { return "run-1" }
	confirmDestroy = func(string) (bool, error) { return true, nil }
	stdout = e.out

	return e
}

var quiet = LogOptions{Level: "error", Format: LogFormatJSON}

// eventSink collects published events.
type eventSink struct {
	mu     sync.Mutex
	events []provisioning.Event
	closed bool
}

func (s *eventSink) Printf(string, ...interface{}) {}
func (s *eventSink) Event(e provisioning.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}
func (s *eventSink) Progress(string, int, int)                          {}
func (s *eventSink) WithFields(map[string]string) provisioning.Observer { return s }
func (s *eventSink) Err() error                                         { return nil }
func (s *eventSink) Close()                                             { s.closed = true }
