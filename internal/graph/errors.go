package graph

import "fmt"

// NodeError is returned when a node's action fails.
// Output holds whatever the action captured before failing.
type NodeError struct {
	Key     string
	Machine string
	Stage   string
	Output  string
	Err     error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Key, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// DependencyError rejects a node that never ran because a predecessor failed.
type DependencyError struct {
	Key string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s skipped: %v", e.Key, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }
