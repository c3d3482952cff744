// Package deployment orchestrates a multi-region EPaxos benchmark.
//
// A Topology holds one master plus one server and one client per location.
// The Orchestrator issues its work in four stages (provision, install, run,
// collect metrics). Every stage only registers operations in a graph.Graph;
// an operation executes as soon as the late-bound values it consumes have
// resolved, so machines in different regions progress independently.
//
// Run ordering between roles:
//
//	master  after every server's internal address is known
//	server  after the master process started
//	client  after every server process started
//
// Operations that start processes or create machines record a teardown.
// Teardown unwinds them in reverse resolution order.
package deployment
