package labels

import "testing"

func TestNewLabelBuilder(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		deployment string
	}{
		{"simple name", "bench"},
		{"with numbers", "bench-01"},
		{"empty string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			labels := NewLabelBuilder(tt.deployment).Build()

			if labels[KeyDeployment] != tt.deployment {
				t.Errorf("expected %s=%q, got %q", KeyDeployment, tt.deployment, labels[KeyDeployment])
			}
			if labels[KeyManagedBy] != ManagedByPaxosfleet {
				t.Errorf("expected %s=%q, got %q", KeyManagedBy, ManagedByPaxosfleet, labels[KeyManagedBy])
			}
		})
	}
}

func TestLabelBuilder_Chain(t *testing.T) {
	t.Parallel()
	labels := NewLabelBuilder("bench").
		WithRole("server").
		WithLocation("eu").
		WithRunIDIfSet("run-1").
		Merge(map[string]string{"owner": "perf"}).
		Build()

	want := map[string]string{
		KeyDeployment: "bench",
		KeyManagedBy:  ManagedByPaxosfleet,
		KeyRole:       "server",
		KeyLocation:   "eu",
		KeyRunID:      "run-1",
		"owner":       "perf",
	}
	if len(labels) != len(want) {
		t.Fatalf("expected %d labels, got %d: %v", len(want), len(labels), labels)
	}
	for k, v := range want {
		if labels[k] != v {
			t.Errorf("expected %s=%q, got %q", k, v, labels[k])
		}
	}
}

func TestWithRunIDIfSet_Empty(t *testing.T) {
	t.Parallel()
	labels := NewLabelBuilder("bench").WithRunIDIfSet("").Build()
	if _, ok := labels[KeyRunID]; ok {
		t.Errorf("expected no %s label for empty run id", KeyRunID)
	}
}

func TestBuild_ReturnsCopy(t *testing.T) {
	t.Parallel()
	lb := NewLabelBuilder("bench")
	first := lb.Build()
	first[KeyRole] = "mutated"

	if _, ok := lb.Build()[KeyRole]; ok {
		t.Error("mutating a built map must not affect the builder")
	}
}

func TestSelectorForDeployment(t *testing.T) {
	t.Parallel()
	if got := SelectorForDeployment("bench"); got != "paxosfleet.io/deployment=bench" {
		t.Errorf("unexpected selector %q", got)
	}
}
