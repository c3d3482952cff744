// Package events publishes deployment events to NATS so that dashboards
// and other tooling can follow a benchmark as it runs.
package events
