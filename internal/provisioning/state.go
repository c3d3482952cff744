package provisioning

import (
	"sort"
	"sync"
)

// Output is a named value exported by a deployment for external inspection.
// Outputs are exported for failed operations too, with Error set and Value
// holding whatever the operation captured before failing.
type Output struct {
	Key      string `json:"key"`
	Role     string `json:"role"`
	Location string `json:"location"`
	Stage    string `json:"stage"`
	Value    string `json:"value"`
	Error    string `json:"error,omitempty"`
}

// State holds the shared results of a deployment.
// It is progressively populated as operations resolve, from many goroutines.
type State struct {
	mu      sync.Mutex
	outputs map[string]Output
}

// NewState creates an empty deployment state.
func NewState() *State {
	return &State{
		outputs: make(map[string]Output),
	}
}

// Export records an output, replacing any previous output with the same key.
func (s *State) Export(o Output) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[o.Key] = o
}

// Get returns the output with the given key.
func (s *State) Get(key string) (Output, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.outputs[key]
	return o, ok
}

// Outputs returns all outputs sorted by key.
func (s *State) Outputs() []Output {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Output, 0, len(s.outputs))
	for _, o := range s.outputs {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
