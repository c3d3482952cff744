package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/imamik/paxosfleet/internal/config"
	"github.com/imamik/paxosfleet/internal/deployment"
	"github.com/imamik/paxosfleet/internal/graph"
	"github.com/imamik/paxosfleet/internal/metrics"
	"github.com/imamik/paxosfleet/internal/platform/hcloud"
	"github.com/imamik/paxosfleet/internal/provisioning"
	"github.com/imamik/paxosfleet/internal/util/async"
	"github.com/imamik/paxosfleet/internal/util/labels"
	"github.com/imamik/paxosfleet/internal/util/naming"
)

// DownOptions are the flags of the down command.
type DownOptions struct {
	LogOptions
	// Yes skips the confirmation prompt.
	Yes bool
}

// confirmDestroy asks before anything is deleted.
var confirmDestroy = func(name string) (bool, error) {
	if !isInteractiveTTY() {
		return false, fmt.Errorf("refusing to destroy %s without --yes in a non-interactive session", name)
	}
	var confirmed bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Destroy deployment %s?", name)).
			Description("Stops every benchmark process and deletes every server.").
			Affirmative("Destroy").
			Negative("Cancel").
			Value(&confirmed),
	)).Run()
	return confirmed, err
}

// Down handles the down command.
//
// It unwinds the persisted teardown ledger, most recently resolved first,
// then deletes any server still carrying the deployment label and finally
// the deployment's SSH key. Failures are collected; nothing stops the rest.
func Down(ctx context.Context, configPath string, opts DownOptions) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if !opts.Yes {
		ok, err := confirmDestroy(cfg.Name)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(stdout, "Aborted.")
			return nil
		}
	}

	log, flush, err := newLogger(opts.LogOptions)
	if err != nil {
		return err
	}
	defer flush()

	observer := provisioning.NewLogObserver(log).WithFields(map[string]string{"deployment": cfg.Name})

	ledger, err := openLedger(cfg.State.Dir, cfg.Name)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	timeouts := config.LoadTimeouts()
	key, err := cfg.Access.PrivateKey()
	if err != nil {
		return err
	}
	shell, err := newShell(cfg, key, timeouts)
	if err != nil {
		return fmt.Errorf("failed to create ssh client: %w", err)
	}
	infra := newInfraClient(cfg.HCloudToken, timeouts)

	if err := teardown(ctx, cfg, ledger, infra, shell, observer, metrics.NewRecorder(cfg.Name), timeouts); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deployment %s destroyed\n", cfg.Name)
	return nil
}

// teardown unwinds the ledger, sweeps labelled servers and removes the SSH
// key. A record is deleted from the ledger as soon as it was undone, so a
// retried teardown resumes where the previous one failed.
func teardown(
	ctx context.Context,
	cfg *config.Config,
	ledger Ledger,
	infra hcloud.InfrastructureManager,
	shell deployment.Shell,
	observer provisioning.Observer,
	recorder graph.Recorder,
	timeouts *config.Timeouts,
) error {
	records, err := ledger.Teardowns()
	if err != nil {
		return err
	}

	undoer := deployment.NewUndoer(infra, shell, timeouts)
	undo := graph.UndoFunc(func(ctx context.Context, td graph.Teardown) error {
		if err := undoer.Undo(ctx, td); err != nil {
			return err
		}
		return ledger.Delete(td.Node)
	})

	var errs []error
	if err := graph.Unwind(ctx, records, undo, observer, recorder); err != nil {
		errs = append(errs, err)
	}
	if err := sweepServers(ctx, cfg.Name, infra, observer); err != nil {
		errs = append(errs, err)
	}
	if err := infra.DeleteSSHKey(ctx, naming.SSHKey(cfg.Name)); err != nil {
		errs = append(errs, fmt.Errorf("failed to delete ssh key: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return ledger.Reset()
}

// sweepServers deletes every server labelled with the deployment, covering
// servers whose creation was still in flight when the ledger was written.
func sweepServers(ctx context.Context, name string, infra hcloud.ServerProvisioner, observer provisioning.Observer) error {
	servers, err := infra.ListServers(ctx, labels.SelectorForDeployment(name))
	if err != nil {
		return fmt.Errorf("failed to list servers: %w", err)
	}
	if len(servers) == 0 {
		return nil
	}

	tasks := make([]async.Task, 0, len(servers))
	for _, s := range servers {
		serverName := s.Name
		tasks = append(tasks, async.Task{
			Name: serverName,
			Func: func(ctx context.Context) error {
				observer.Printf("deleting leftover server %s", serverName)
				return infra.DeleteServer(ctx, serverName)
			},
		})
	}
	return async.RunParallel(ctx, tasks)
}
