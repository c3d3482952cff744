package deployment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imamik/paxosfleet/internal/config"
	hcloud_internal "github.com/imamik/paxosfleet/internal/platform/hcloud"
	"github.com/imamik/paxosfleet/internal/provisioning"
	testutil "github.com/imamik/paxosfleet/internal/testing"
)

// callLog records calls across fakes in the order they happened.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) since(n int) []string {
	return l.all()[n:]
}

type fakeCloud struct {
	log       *callLog
	mu        sync.Mutex
	fail      map[string]error
	deleteErr map[string]error
	noPrivate bool
	opts      []hcloud_internal.ServerCreateOpts
	deleted   []string
}

func (c *fakeCloud) CreateServer(_ context.Context, opts hcloud_internal.ServerCreateOpts) (hcloud_internal.ServerAddresses, error) {
	c.mu.Lock()
	c.opts = append(c.opts, opts)
	err := c.fail[opts.Name]
	c.mu.Unlock()
	c.log.add("create %s", opts.Name)

	if err != nil {
		return hcloud_internal.ServerAddresses{}, err
	}
	addrs := hcloud_internal.ServerAddresses{Public: "pub-" + opts.Name}
	if !c.noPrivate {
		addrs.Private = "priv-" + opts.Name
	}
	return addrs, nil
}

func (c *fakeCloud) DeleteServer(_ context.Context, name string) error {
	c.mu.Lock()
	c.deleted = append(c.deleted, name)
	err := c.deleteErr[name]
	c.mu.Unlock()
	c.log.add("delete %s", name)
	return err
}

func (c *fakeCloud) created() []hcloud_internal.ServerCreateOpts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]hcloud_internal.ServerCreateOpts(nil), c.opts...)
}

type shellCall struct {
	Host    string
	Command string
}

// fakeShell fails a command while its failure budget lasts. Budgets match a
// command exactly or by its first words.
type fakeShell struct {
	log      *callLog
	mu       sync.Mutex
	calls    []shellCall
	failures map[string]int
	// failOn fails every command on a host containing the given text.
	failOn  map[string]string
	outputs map[string]string
}

func (s *fakeShell) Execute(_ context.Context, host, command string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, shellCall{Host: host, Command: command})
	var err error
	for key, n := range s.failures {
		if n > 0 && (command == key || strings.HasPrefix(command, key+" ")) {
			s.failures[key] = n - 1
			err = errors.New("exit status 1")
			break
		}
	}
	if substr, ok := s.failOn[host]; ok && strings.Contains(command, substr) {
		err = errors.New("exit status 2")
	}
	out := "ok"
	for key, v := range s.outputs {
		if strings.Contains(command, key) {
			out = v
		}
	}
	s.mu.Unlock()
	s.log.add("exec %s: %s", host, command)

	if err != nil {
		return "", err
	}
	return out, nil
}

func (s *fakeShell) matching(substr string) []shellCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []shellCall
	for _, c := range s.calls {
		if strings.Contains(c.Command, substr) {
			out = append(out, c)
		}
	}
	return out
}

type fakeSyncer struct {
	log *callLog
}

func (f *fakeSyncer) Sync(_ context.Context, host, localDir string) (string, error) {
	f.log.add("sync %s %s", host, localDir)
	return "sent " + localDir, nil
}

type fakeArtifacts struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeArtifacts) Upload(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = make(map[string]string)
	}
	f.objects[key] = string(data)
	return nil
}

type harness struct {
	cfg      *config.Config
	log      *callLog
	cloud    *fakeCloud
	shell    *fakeShell
	syncer   *fakeSyncer
	observer *testutil.RecordingObserver
	pctx     *provisioning.Context
	topology *Topology
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()

	settings, err := SettingsFromConfig(cfg, "run-1")
	require.NoError(t, err)
	topology, err := TopologyFromConfig(cfg, settings)
	require.NoError(t, err)

	log := &callLog{}
	observer := testutil.NewRecordingObserver()
	return &harness{
		cfg:      cfg,
		log:      log,
		cloud:    &fakeCloud{log: log, fail: map[string]error{}, deleteErr: map[string]error{}},
		shell:    &fakeShell{log: log, failures: map[string]int{}, failOn: map[string]string{}, outputs: map[string]string{"client_metrics.py": "throughput 1200"}},
		syncer:   &fakeSyncer{log: log},
		observer: observer,
		pctx:     provisioning.NewContext(testutil.TestContext(t), cfg, observer),
		topology: topology,
	}
}

func (h *harness) orchestrator(t *testing.T, artifacts ArtifactStore) *Orchestrator {
	t.Helper()
	deps := Dependencies{
		Cloud:   h.cloud,
		Shell:   h.shell,
		Syncer:  h.syncer,
		SSHKeys: []string{"test-bench-admin"},
	}
	if artifacts != nil {
		deps.Artifacts = artifacts
	}
	o, err := New(h.pctx, h.topology, deps)
	require.NoError(t, err)
	return o
}
