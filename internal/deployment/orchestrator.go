package deployment

import (
	"context"
	"fmt"
	"sync"

	"github.com/imamik/paxosfleet/internal/config"
	"github.com/imamik/paxosfleet/internal/future"
	"github.com/imamik/paxosfleet/internal/graph"
	hcloud_internal "github.com/imamik/paxosfleet/internal/platform/hcloud"
	"github.com/imamik/paxosfleet/internal/provisioning"
	"github.com/imamik/paxosfleet/internal/util/naming"
)

// Dependencies are the collaborators an Orchestrator drives.
type Dependencies struct {
	Cloud  Cloud
	Shell  Shell
	Syncer Syncer
	// Artifacts is optional; metrics are not uploaded when nil.
	Artifacts ArtifactStore
	// SSHKeys are the cloud SSH key names installed for root on every machine.
	SSHKeys []string
	// Graph options are applied after the orchestrator's own observer option.
	Graph []graph.Option
}

// Orchestrator issues the operation graph of a topology stage by stage.
// Stages only register operations; resolution order follows the graph.
type Orchestrator struct {
	cfg      *config.Config
	state    *provisioning.State
	observer provisioning.Observer
	timeouts *config.Timeouts
	deps     Dependencies
	topology *Topology
	poller   Poller
	graph    *graph.Graph

	mu         sync.Mutex
	stage      Stage
	machines   map[string]*Machine
	provisions map[string]*graph.Node
	installs   map[string]*graph.Node
	runs       map[string]*graph.Node
}

// New creates an orchestrator for topology in the Built stage.
func New(pctx *provisioning.Context, topology *Topology, deps Dependencies) (*Orchestrator, error) {
	if deps.Cloud == nil {
		return nil, fmt.Errorf("orchestrator requires a cloud")
	}
	if deps.Shell == nil {
		return nil, fmt.Errorf("orchestrator requires a shell")
	}
	if deps.Syncer == nil {
		return nil, fmt.Errorf("orchestrator requires a syncer")
	}

	graphOpts := append([]graph.Option{graph.WithObserver(pctx.Observer)}, deps.Graph...)

	return &Orchestrator{
		cfg:        pctx.Config,
		state:      pctx.State,
		observer:   pctx.Observer,
		timeouts:   pctx.Timeouts,
		deps:       deps,
		topology:   topology,
		poller:     PollerFromConfig(pctx.Config.Readiness),
		graph:      graph.New(graphOpts...),
		stage:      StageBuilt,
		machines:   make(map[string]*Machine),
		provisions: make(map[string]*graph.Node),
		installs:   make(map[string]*graph.Node),
		runs:       make(map[string]*graph.Node),
	}, nil
}

// Stage returns the current stage.
func (o *Orchestrator) Stage() Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stage
}

// Graph returns the operation graph.
func (o *Orchestrator) Graph() *graph.Graph { return o.graph }

// Topology returns the orchestrated topology.
func (o *Orchestrator) Topology() *Topology { return o.topology }

// Machine returns the machine of the named instance.
func (o *Orchestrator) Machine(name string) (*Machine, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	m, ok := o.machines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotProvisioned, name)
	}
	return m, nil
}

// Address returns the public address of the named instance. It fails with
// ErrNotProvisioned until Provision issued the instance's create call.
func (o *Orchestrator) Address(name string) (*future.Value[string], error) {
	m, err := o.Machine(name)
	if err != nil {
		return nil, err
	}
	return m.External, nil
}

// InternalAddress is Address for the private network address.
func (o *Orchestrator) InternalAddress(name string) (*future.Value[string], error) {
	m, err := o.Machine(name)
	if err != nil {
		return nil, err
	}
	return m.Internal, nil
}

// advance moves from one stage to the next. Callers hold o.mu.
func (o *Orchestrator) advance(from, to Stage) error {
	if o.stage != from {
		return fmt.Errorf("%w: %s requires stage %s, current stage is %s", ErrStageOrder, to, from, o.stage)
	}
	o.stage = to
	return nil
}

// Provision issues a create-machine operation for every instance.
func (o *Orchestrator) Provision(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.advance(StageBuilt, StageProvisioning); err != nil {
		return err
	}

	userData, err := renderBootstrap(bootstrapData{
		Username:    o.cfg.Access.Username,
		GoVersion:   o.cfg.Benchmark.GoVersion,
		SetupScript: o.cfg.Benchmark.SetupScript,
		RemoteDir:   o.cfg.Source.RemoteDir(),
	})
	if err != nil {
		return err
	}

	for _, inst := range o.topology.Instances() {
		o.provision(ctx, inst, userData)
	}
	return nil
}

func (o *Orchestrator) provision(ctx context.Context, inst *Instance, userData string) {
	m := newMachine(inst)
	o.machines[inst.Name()] = m

	node := o.graph.Schedule(ctx, graph.Operation{
		Key:     "provision/" + inst.Name(),
		Machine: inst.Name(),
		Stage:   "provision",
		Action: func(ctx context.Context) (graph.Outcome, error) {
			addrs, err := o.deps.Cloud.CreateServer(ctx, hcloud_internal.ServerCreateOpts{
				Name:       inst.ServerName(),
				ImageType:  inst.Settings.Image,
				ServerType: inst.Settings.ServerType,
				Location:   inst.Zone.Location,
				SSHKeys:    o.deps.SSHKeys,
				Labels:     inst.Labels(),
				UserData:   userData,
			})
			if err != nil {
				m.fail(err)
				return graph.Outcome{}, fmt.Errorf("failed to create server %s: %w", inst.ServerName(), err)
			}
			m.resolve(addrs)
			return graph.Outcome{
				Output:   addrs.Public,
				Teardown: &graph.Teardown{Kind: graph.KindDestroy, Resource: inst.ServerName()},
			}, nil
		},
	})
	o.provisions[inst.Name()] = node
	o.export(node, "public_ip-"+inst.Name(), inst)
}

// Install issues readiness, sync and install operations for every machine.
func (o *Orchestrator) Install(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.advance(StageProvisioning, StageInstalling); err != nil {
		return err
	}
	for _, inst := range o.topology.Instances() {
		o.install(ctx, inst)
	}
	return nil
}

func (o *Orchestrator) install(ctx context.Context, inst *Instance) {
	name := inst.Name()
	m := o.machines[name]
	script := o.cfg.Benchmark.SetupScript

	ready := o.graph.Schedule(ctx, graph.Operation{
		Key:     "ready/" + name,
		Machine: name,
		Stage:   "ready",
		After:   []future.Signal{o.provisions[name]},
		Action: func(ctx context.Context) (graph.Outcome, error) {
			host, err := m.External.Result()
			if err != nil {
				return graph.Outcome{}, err
			}
			poller := o.poller
			poller.OnAttempt = func(attempt int, _ error) {
				o.observer.Progress("ready/"+name, attempt, o.poller.MaxAttempts)
			}
			if err := poller.Await(ctx, func(ctx context.Context) error {
				_, err := o.exec(ctx, host, probeCommand(script))
				return err
			}); err != nil {
				return graph.Outcome{}, err
			}
			return graph.Outcome{Output: host}, nil
		},
	})

	sync := o.graph.Schedule(ctx, graph.Operation{
		Key:     "sync/" + name,
		Machine: name,
		Stage:   "sync",
		After:   []future.Signal{ready},
		Action: func(ctx context.Context) (graph.Outcome, error) {
			host, err := m.External.Result()
			if err != nil {
				return graph.Outcome{}, err
			}
			ctx, cancel := context.WithTimeout(ctx, o.timeouts.Command)
			defer cancel()
			out, err := o.deps.Syncer.Sync(ctx, host, o.cfg.Source.Dir)
			return graph.Outcome{Output: out}, err
		},
	})
	o.export(sync, "output_run_rsync-"+name, inst)

	install := o.graph.Schedule(ctx, graph.Operation{
		Key:     "install/" + name,
		Machine: name,
		Stage:   "install",
		After:   []future.Signal{sync},
		Action: func(ctx context.Context) (graph.Outcome, error) {
			host, err := m.External.Result()
			if err != nil {
				return graph.Outcome{}, err
			}
			var setupOut string
			if err := o.poller.Await(ctx, func(ctx context.Context) error {
				out, err := o.exec(ctx, host, script)
				setupOut = out
				return err
			}); err != nil {
				return graph.Outcome{Output: setupOut}, fmt.Errorf("setup script did not succeed: %w", err)
			}
			out, err := o.exec(ctx, host, installCommand(inst.Settings.RemoteDir))
			return graph.Outcome{Output: out}, err
		},
	})
	o.installs[name] = install
	o.export(install, "output_run_go_installs-"+name, inst)
}

// Run issues the master, server and client processes.
// The master waits for every server's address, servers wait for the
// master and clients wait for every server.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.advance(StageInstalling, StageRunning); err != nil {
		return err
	}

	bench := o.cfg.Benchmark
	master := o.topology.Master
	masterMachine := o.machines[master.Name()]
	dir := master.Settings.RemoteDir

	// The master only needs the server addresses, so a failed server
	// install stays confined to its own location.
	serverIPs := make([]*future.Value[string], 0, len(o.topology.Locations))
	for _, loc := range o.topology.Locations {
		serverIPs = append(serverIPs, o.machines[o.topology.Servers[loc].Name()].Internal)
	}
	ips := future.Join(serverIPs...)
	masterAfter := []future.Signal{o.installs[master.Name()], ips}

	masterRun := o.run(ctx, master, masterAfter, "master", func() (string, error) {
		list, err := ips.Result()
		if err != nil {
			return "", err
		}
		return masterCommand(dir, list), nil
	})

	serverRuns := make([]future.Signal, 0, len(o.topology.Locations))
	for _, loc := range o.topology.Locations {
		server := o.topology.Servers[loc]
		own := o.machines[server.Name()].Internal
		after := []future.Signal{o.installs[server.Name()], masterRun, masterMachine.Internal}
		serverRuns = append(serverRuns, o.run(ctx, server, after, "server", func() (string, error) {
			maddr, err := masterMachine.Internal.Result()
			if err != nil {
				return "", err
			}
			addr, err := own.Result()
			if err != nil {
				return "", err
			}
			port := bench.BasePort + server.Zone.Index
			return serverCommand(server.Settings.RemoteDir, port, maddr, addr, bench.EPaxosEnabled()), nil
		}))
	}

	for _, loc := range o.topology.Locations {
		client := o.topology.Clients[loc]
		after := append([]future.Signal{o.installs[client.Name()], masterMachine.Internal}, serverRuns...)
		o.run(ctx, client, after, "client", func() (string, error) {
			maddr, err := masterMachine.Internal.Result()
			if err != nil {
				return "", err
			}
			return clientCommand(client.Settings.RemoteDir, maddr, bench, client.Zone.Index), nil
		})
	}
	return nil
}

// run schedules a detached benchmark process whose teardown kills binary.
// command is evaluated only after every predecessor resolved.
func (o *Orchestrator) run(ctx context.Context, inst *Instance, after []future.Signal, binary string, command func() (string, error)) *graph.Node {
	m := o.machines[inst.Name()]
	node := o.graph.Schedule(ctx, graph.Operation{
		Key:     "run/" + inst.Name(),
		Machine: inst.Name(),
		Stage:   "run",
		After:   after,
		Action: func(ctx context.Context) (graph.Outcome, error) {
			host, err := m.External.Result()
			if err != nil {
				return graph.Outcome{}, err
			}
			cmd, err := command()
			if err != nil {
				return graph.Outcome{}, err
			}
			out, err := o.exec(ctx, host, cmd)
			if err != nil {
				return graph.Outcome{Output: out}, err
			}
			return graph.Outcome{
				Output: out,
				Teardown: &graph.Teardown{
					Kind:    graph.KindCommand,
					Host:    host,
					User:    inst.Settings.Username,
					Command: stopCommand(binary),
				},
			}, nil
		},
	})
	o.runs[inst.Name()] = node
	return node
}

// CollectMetrics issues the metrics script on every client once it runs,
// and uploads its output when an artifact store is configured.
func (o *Orchestrator) CollectMetrics(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.advance(StageRunning, StageCollectingMetrics); err != nil {
		return err
	}

	for _, loc := range o.topology.Locations {
		client := o.topology.Clients[loc]
		m := o.machines[client.Name()]

		metrics := o.graph.Schedule(ctx, graph.Operation{
			Key:     "metrics/" + client.Name(),
			Machine: client.Name(),
			Stage:   "metrics",
			After:   []future.Signal{o.runs[client.Name()]},
			Action: func(ctx context.Context) (graph.Outcome, error) {
				host, err := m.External.Result()
				if err != nil {
					return graph.Outcome{}, err
				}
				out, err := o.exec(ctx, host, metricsCommand(client.Settings.RemoteDir, o.cfg.Benchmark))
				return graph.Outcome{Output: out}, err
			},
		})
		o.export(metrics, "metrics-"+loc, client)

		if o.deps.Artifacts == nil {
			continue
		}
		o.graph.Schedule(ctx, graph.Operation{
			Key:     "artifact/" + client.Name(),
			Machine: client.Name(),
			Stage:   "artifact",
			After:   []future.Signal{metrics},
			Action: func(ctx context.Context) (graph.Outcome, error) {
				out, err := metrics.Result().Result()
				if err != nil {
					return graph.Outcome{}, err
				}
				key := naming.ArtifactKey(o.cfg.Artifacts.Prefix, client.Settings.Deployment, client.Settings.RunID, client.Name())
				if err := o.deps.Artifacts.Upload(ctx, key, []byte(out)); err != nil {
					return graph.Outcome{}, err
				}
				return graph.Outcome{Output: key}, nil
			},
		})
	}
	return nil
}

// Phases returns the four issuing stages as provisioning phases.
func (o *Orchestrator) Phases() []provisioning.Phase {
	return []provisioning.Phase{
		provisioning.PhaseFunc{PhaseName: "provision", Fn: func(ctx *provisioning.Context) error { return o.Provision(ctx) }},
		provisioning.PhaseFunc{PhaseName: "install", Fn: func(ctx *provisioning.Context) error { return o.Install(ctx) }},
		provisioning.PhaseFunc{PhaseName: "run", Fn: func(ctx *provisioning.Context) error { return o.Run(ctx) }},
		provisioning.PhaseFunc{PhaseName: "metrics", Fn: func(ctx *provisioning.Context) error { return o.CollectMetrics(ctx) }},
	}
}

// Deploy issues every stage and waits for the graph to settle.
func (o *Orchestrator) Deploy(pctx *provisioning.Context) (*Report, error) {
	if err := provisioning.RunPhases(pctx, o.Phases()); err != nil {
		return nil, err
	}
	return o.Wait(pctx)
}

// Wait blocks until every issued operation settled and returns the report.
// The error joins every failed operation; the report is returned with it.
func (o *Orchestrator) Wait(ctx context.Context) (*Report, error) {
	o.mu.Lock()
	if o.stage != StageCollectingMetrics {
		stage := o.stage
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: wait requires stage %s, current stage is %s", ErrStageOrder, StageCollectingMetrics, stage)
	}
	o.mu.Unlock()

	err := o.graph.Wait(ctx)
	if ctx.Err() != nil {
		return o.report(), err
	}

	o.mu.Lock()
	o.stage = StageComplete
	o.mu.Unlock()
	return o.report(), err
}

// Teardown runs every recorded teardown once, most recently resolved first.
// Failures are reported and joined; they never stop the remaining teardowns.
func (o *Orchestrator) Teardown(ctx context.Context) error {
	return o.graph.Unwind(ctx, NewUndoer(o.deps.Cloud, o.deps.Shell, o.timeouts))
}

// exec runs command on host bounded by the command timeout.
func (o *Orchestrator) exec(ctx context.Context, host, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeouts.Command)
	defer cancel()
	return o.deps.Shell.Execute(ctx, host, command)
}

// export records the node's output under key once it settles, failed or not.
func (o *Orchestrator) export(n *graph.Node, key string, inst *Instance) {
	n.Result().OnSettled(func(_ string, err error) {
		out := provisioning.Output{
			Key:      key,
			Role:     string(inst.Role),
			Location: inst.Location,
			Stage:    n.Stage(),
			Value:    n.Output(),
		}
		if err != nil {
			out.Error = err.Error()
		}
		o.state.Export(out)
	})
}
