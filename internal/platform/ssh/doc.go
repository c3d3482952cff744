// Package ssh runs commands on benchmark machines over SSH.
//
// A Client holds the admin user and key of a deployment and dials a fresh
// connection for every command, so one client serves every machine
// concurrently. Dial failures are retried with backoff; command failures are
// not, callers decide whether a command is worth repeating.
package ssh
