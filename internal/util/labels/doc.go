// Package labels provides consistent labeling for Hetzner Cloud resources.
//
// All labels use the paxosfleet.io domain prefix and follow a builder
// pattern for constructing label sets with deployment name, role, location
// and run identification. Labels let "down" find every machine of a
// deployment even when the local teardown ledger is gone.
package labels
