// Package graph schedules remote operations with explicit predecessors.
//
// A [Graph] holds [Node]s keyed by a caller-chosen string. Scheduling never
// runs anything synchronously: a node's [Action] starts in its own goroutine
// once every predecessor [future.Signal] has resolved successfully. When a
// predecessor fails, the node is skipped and its own result is rejected with a
// [*DependencyError], so failures propagate forward through the graph while
// independent branches keep running.
//
// Successful actions may return a [Teardown]. The graph records it in a
// ledger with the node's resolution sequence number; [Graph.Unwind] and
// [Unwind] walk the ledger most-recently-resolved first, best-effort, running
// each record at most once.
package graph
