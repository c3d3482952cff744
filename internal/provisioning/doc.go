// Package provisioning provides the shared types that carry a deployment
// through its phases.
//
// # Core Types
//
// Context carries configuration, state, timeouts and the Observer.
// Phase defines a deployment step with Name() and Provision() methods and
// RunPhases executes phases in order.
// State accumulates the named outputs of a deployment (public addresses,
// per-stage command output, metrics) keyed by role and location.
// Observer emits structured events; LogObserver writes them to a logr.Logger.
package provisioning
