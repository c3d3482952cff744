package testing

import (
	"context"
	"testing"
	"time"
)

const maxTestTimeout = 30 * time.Second

// TestContext returns a context cancelled when the test ends. It expires
// after 30 seconds or a little before the go test deadline, whichever is
// sooner, so a hung node fails the test instead of the whole binary.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	timeout := maxTestTimeout
	if deadline, ok := t.Deadline(); ok {
		if left := time.Until(deadline) - time.Second; left > 0 && left < timeout {
			timeout = left
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
