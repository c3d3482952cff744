// Package config defines the deployment configuration consumed by the
// orchestrator and the platform clients.
//
// The [Config] struct is loaded from a YAML file with [LoadFile], which
// applies defaults, pulls secrets from the environment when they are not
// set in the file, and validates the result. Timeouts are loaded separately
// from environment variables with [LoadTimeouts].
package config
