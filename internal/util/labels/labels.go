package labels

// Standard label keys for Hetzner Cloud resources.
const (
	// KeyDeployment identifies which deployment a resource belongs to
	KeyDeployment = "paxosfleet.io/deployment"

	// KeyRole identifies the benchmark role of a machine (master, server, client)
	KeyRole = "paxosfleet.io/role"

	// KeyLocation identifies the short location code of a machine
	KeyLocation = "paxosfleet.io/location"

	// KeyRunID identifies the invocation that created a resource
	KeyRunID = "paxosfleet.io/run-id"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "paxosfleet.io/managed-by"
)

// ManagedByPaxosfleet is the value of KeyManagedBy for every resource this tool creates.
const ManagedByPaxosfleet = "paxosfleet"

// LabelBuilder provides a fluent interface for building Hetzner Cloud resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the deployment name pre-set.
func NewLabelBuilder(deployment string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyDeployment: deployment,
			KeyManagedBy:  ManagedByPaxosfleet,
		},
	}
}

// WithRole adds a role label.
func (lb *LabelBuilder) WithRole(role string) *LabelBuilder {
	lb.labels[KeyRole] = role
	return lb
}

// WithLocation adds a location label.
func (lb *LabelBuilder) WithLocation(location string) *LabelBuilder {
	lb.labels[KeyLocation] = location
	return lb
}

// WithRunIDIfSet adds a run-id label only if runID is non-empty.
func (lb *LabelBuilder) WithRunIDIfSet(runID string) *LabelBuilder {
	if runID != "" {
		lb.labels[KeyRunID] = runID
	}
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// SelectorForDeployment returns a label selector string for all resources in a deployment.
func SelectorForDeployment(deployment string) string {
	return KeyDeployment + "=" + deployment
}
