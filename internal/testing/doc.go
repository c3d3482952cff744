// Package testing provides test utilities, builders, and fixtures for unit tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - ConfigBuilder: Fluent builder for creating test configurations
//   - RecordingObserver: Observer that keeps every event for assertions
//   - TestContext: context bound to the test's lifetime
//
// Usage:
//
//	cfg := testing.NewConfigBuilder().
//	    WithName("bench").
//	    WithLocations("or", "eu").
//	    Build()
package testing
