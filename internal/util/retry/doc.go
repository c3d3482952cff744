// Package retry provides retry logic with exponential or constant backoff
// for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max
// attempts, initial delay and maximum delay. It is used for Hetzner Cloud
// API calls, SSH connection establishment and, with constant delay and
// unlimited retries, for waiting on freshly created machines.
package retry
