package deployment

import (
	"time"

	"github.com/imamik/paxosfleet/internal/graph"
	"github.com/imamik/paxosfleet/internal/provisioning"
)

// Report summarizes a deployment after its graph settled.
type Report struct {
	Deployment string                `json:"deployment"`
	RunID      string                `json:"run_id"`
	Stage      string                `json:"stage"`
	Nodes      []NodeReport          `json:"nodes"`
	Outputs    []provisioning.Output `json:"outputs"`
}

// NodeReport is the final state of one operation.
type NodeReport struct {
	Key      string        `json:"key"`
	Machine  string        `json:"machine"`
	Stage    string        `json:"stage"`
	State    string        `json:"state"`
	Duration time.Duration `json:"duration"`
	Output   string        `json:"output,omitempty"`
	Err      string        `json:"error,omitempty"`
}

// Failed returns the nodes that failed or were skipped.
func (r *Report) Failed() []NodeReport {
	var out []NodeReport
	for _, n := range r.Nodes {
		if n.State == graph.Failed.String() || n.State == graph.Skipped.String() {
			out = append(out, n)
		}
	}
	return out
}

// Counts returns the number of nodes per state.
func (r *Report) Counts() map[string]int {
	counts := make(map[string]int)
	for _, n := range r.Nodes {
		counts[n.State]++
	}
	return counts
}

func (o *Orchestrator) report() *Report {
	nodes := o.graph.Nodes()
	r := &Report{
		Deployment: o.cfg.Name,
		RunID:      o.topology.Master.Settings.RunID,
		Stage:      o.Stage().String(),
		Nodes:      make([]NodeReport, 0, len(nodes)),
		Outputs:    o.state.Outputs(),
	}
	for _, n := range nodes {
		nr := NodeReport{
			Key:      n.Key(),
			Machine:  n.Machine(),
			Stage:    n.Stage(),
			State:    n.State().String(),
			Duration: n.Duration(),
			Output:   n.Output(),
		}
		if err := n.Err(); err != nil {
			nr.Err = err.Error()
		}
		r.Nodes = append(r.Nodes, nr)
	}
	return r
}
