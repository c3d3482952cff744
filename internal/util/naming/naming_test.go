package naming

import "testing"

func TestNamingFunctions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"instance", Instance("client", "or"), "client-or"},
		{"server", Server("bench", "master", "eu"), "bench-master-eu"},
		{"ssh key", SSHKey("bench"), "bench-admin"},
		{"artifact without prefix", ArtifactKey("", "bench", "r1", "client-or"), "bench/r1/client-or.txt"},
		{"artifact with prefix", ArtifactKey("results", "bench", "r1", "client-jp"), "results/bench/r1/client-jp.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
