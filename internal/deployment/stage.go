package deployment

// Stage is the issuance progress of an orchestrator.
type Stage int

const (
	StageBuilt Stage = iota
	StageProvisioning
	StageInstalling
	StageRunning
	StageCollectingMetrics
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageBuilt:
		return "built"
	case StageProvisioning:
		return "provisioning"
	case StageInstalling:
		return "installing"
	case StageRunning:
		return "running"
	case StageCollectingMetrics:
		return "collecting-metrics"
	case StageComplete:
		return "complete"
	default:
		return "unknown"
	}
}
