package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/imamik/paxosfleet/internal/config"
	"github.com/imamik/paxosfleet/internal/deployment"
	"github.com/imamik/paxosfleet/internal/graph"
	"github.com/imamik/paxosfleet/internal/metrics"
	"github.com/imamik/paxosfleet/internal/provisioning"
	"github.com/imamik/paxosfleet/internal/util/keygen"
	"github.com/imamik/paxosfleet/internal/util/labels"
	"github.com/imamik/paxosfleet/internal/util/naming"
)

// UpOptions are the flags of the up command.
type UpOptions struct {
	LogOptions
	// Teardown unwinds the deployment once the benchmark finished.
	Teardown bool
	// MetricsAddr exposes Prometheus metrics while the deployment runs.
	MetricsAddr string
	// SkipPrereqs skips the local tool check.
	SkipPrereqs bool
}

// newRunID generates the identifier labelling every resource of one invocation.
var newRunID = uuid.NewString

// Up handles the up command.
//
// It provisions one master plus a server and a client per location, installs
// the benchmark, starts master, servers and clients in dependency order and
// collects client metrics. Every teardown obligation is written to the local
// state as it is incurred so that `down` can unwind the deployment later.
func Up(ctx context.Context, configPath string, opts UpOptions) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log, flush, err := newLogger(opts.LogOptions)
	if err != nil {
		return err
	}
	defer flush()

	if !opts.SkipPrereqs {
		if err := checkDefaultPrereqs().Error(); err != nil {
			return err
		}
	}

	runID := newRunID()
	fields := map[string]string{"deployment": cfg.Name, "run_id": runID}
	var observer provisioning.Observer = provisioning.NewLogObserver(log).WithFields(fields)

	if cfg.Events.URL != "" {
		sink, err := connectEvents(cfg.Events, cfg.Name)
		if err != nil {
			return err
		}
		defer func() {
			if err := sink.Err(); err != nil {
				log.Error(err, "event publishing degraded")
			}
			sink.Close()
		}()
		observer = provisioning.MultiObserver{observer, sink.WithFields(fields)}
	}

	ledger, err := openLedger(cfg.State.Dir, cfg.Name)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	pending, err := ledger.Teardowns()
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return fmt.Errorf("deployment %s has %d pending teardown records, run `paxosfleet down` first", cfg.Name, len(pending))
	}
	if err := ledger.Reset(); err != nil {
		return fmt.Errorf("failed to reset state: %w", err)
	}
	if err := ledger.SetRunID(runID); err != nil {
		return fmt.Errorf("failed to save run id: %w", err)
	}

	pctx := provisioning.NewContext(ctx, cfg, observer)
	recorder := metrics.NewRecorder(cfg.Name)
	if opts.MetricsAddr != "" {
		serveCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := recorder.Serve(serveCtx, opts.MetricsAddr); err != nil {
				log.Error(err, "metrics endpoint stopped", "addr", opts.MetricsAddr)
			}
		}()
	}
	recorder.SetActive(true)
	defer recorder.SetActive(false)

	key, err := cfg.Access.PrivateKey()
	if err != nil {
		return err
	}
	infra := newInfraClient(cfg.HCloudToken, pctx.Timeouts)
	keyName, err := ensureSSHKey(ctx, infra, cfg, key, runID)
	if err != nil {
		return err
	}

	shell, err := newShell(cfg, key, pctx.Timeouts)
	if err != nil {
		return fmt.Errorf("failed to create ssh client: %w", err)
	}
	syncer, closeSyncer, err := newSyncer(cfg, key)
	if err != nil {
		return fmt.Errorf("failed to create syncer: %w", err)
	}
	defer func() { _ = closeSyncer() }()

	deps := deployment.Dependencies{
		Cloud:   infra,
		Shell:   shell,
		Syncer:  syncer,
		SSHKeys: []string{keyName},
		Graph:   []graph.Option{graph.WithRecorder(recorder), graph.WithLedger(ledger)},
	}
	if cfg.Artifacts.Enabled() {
		store, err := newArtifactStore(cfg.Artifacts)
		if err != nil {
			return fmt.Errorf("failed to create artifact store: %w", err)
		}
		deps.Artifacts = store
	}

	settings, err := deployment.SettingsFromConfig(cfg, runID)
	if err != nil {
		return err
	}
	topology, err := deployment.TopologyFromConfig(cfg, settings)
	if err != nil {
		return err
	}
	orch, err := deployment.New(pctx, topology, deps)
	if err != nil {
		return err
	}

	report, deployErr := orch.Deploy(pctx)
	if err := ledger.SaveOutputs(pctx.State.Outputs()); err != nil {
		log.Error(err, "failed to save outputs")
	}
	if report != nil {
		fmt.Fprint(stdout, renderReport(report))
	}

	if opts.Teardown {
		if err := teardown(ctx, cfg, ledger, infra, shell, observer, recorder, pctx.Timeouts); err != nil {
			return errors.Join(deployErr, err)
		}
	}

	if deployErr != nil {
		return fmt.Errorf("deployment %s failed: %w", cfg.Name, deployErr)
	}
	return nil
}

// ensureSSHKey uploads the public half of the configured key and returns its name.
func ensureSSHKey(ctx context.Context, infra sshKeyEnsurer, cfg *config.Config, key []byte, runID string) (string, error) {
	public, err := keygen.AuthorizedKey(key)
	if err != nil {
		return "", err
	}
	name := naming.SSHKey(cfg.Name)
	l := labels.NewLabelBuilder(cfg.Name).WithRunIDIfSet(runID).Build()
	if _, err := infra.EnsureSSHKey(ctx, name, public, l); err != nil {
		return "", fmt.Errorf("failed to ensure ssh key %s: %w", name, err)
	}
	return name, nil
}

type sshKeyEnsurer interface {
	EnsureSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (string, error)
}
