// Package hcloud wraps the Hetzner Cloud API for the servers and SSH keys
// of a benchmark deployment.
//
// DeleteOperation and EnsureOperation give every resource the same delete
// and get-or-create behavior: deletes are idempotent and retry locked
// resources, ensures return an existing resource after validating it.
//
// Server creation retries transient API errors (locked resources, exhausted
// capacity, rate limits) with exponential backoff and fails immediately on
// invalid parameters. Timeouts and retry bounds come from config.Timeouts.
package hcloud
