// Package state persists what a deployment leaves behind.
//
// Store implements graph.Ledger: every teardown obligation is written before
// the operation that incurred it resolves, so `paxosfleet down` can unwind a
// deployment whose `up` process has exited or crashed.
package state
