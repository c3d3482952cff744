package deployment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/paxosfleet/internal/config"
	"github.com/imamik/paxosfleet/internal/util/retry"
)

func TestPoller_SucceedsAfterFailures(t *testing.T) {
	var probes, reported int
	p := Poller{
		MaxAttempts: 5,
		Interval:    time.Millisecond,
		OnAttempt:   func(int, error) { reported++ },
	}

	err := p.Await(context.Background(), func(context.Context) error {
		probes++
		if probes < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, probes)
	assert.Equal(t, 2, reported)
}

func TestPoller_NoProbeAfterSuccess(t *testing.T) {
	var probes int
	p := Poller{Interval: time.Millisecond}

	require.NoError(t, p.Await(context.Background(), func(context.Context) error {
		probes++
		return nil
	}))
	assert.Equal(t, 1, probes)
}

func TestPoller_BoundedExhaustion(t *testing.T) {
	var probes int
	p := Poller{MaxAttempts: 4, Interval: time.Millisecond}

	err := p.Await(context.Background(), func(context.Context) error {
		probes++
		return errors.New("no route to host")
	})
	require.ErrorIs(t, err, ErrNotReady)
	assert.EqualError(t, err, "machine not ready after 4 attempts: no route to host")
	assert.Equal(t, 4, probes)
}

func TestPoller_RetriesFatalProbeErrors(t *testing.T) {
	var probes int
	p := Poller{Interval: time.Millisecond}

	err := p.Await(context.Background(), func(context.Context) error {
		probes++
		if probes < 3 {
			return fmt.Errorf("failed to establish SSH connection to 10.0.0.1:22: %w",
				retry.Fatal(errors.New("ssh: unable to authenticate")))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, probes)
}

func TestPoller_ExhaustionReportsAttemptsAfterFatal(t *testing.T) {
	var probes int
	p := Poller{MaxAttempts: 2, Interval: time.Millisecond}

	err := p.Await(context.Background(), func(context.Context) error {
		probes++
		return retry.Fatal(errors.New("ssh: unable to authenticate"))
	})
	require.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 2, probes)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestPoller_UnboundedStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var probes int
	p := Poller{Interval: time.Millisecond}

	err := p.Await(ctx, func(context.Context) error {
		probes++
		if probes == 10 {
			cancel()
		}
		return errors.New("not yet")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 10, probes)
}

func TestPollerFromConfig(t *testing.T) {
	p := PollerFromConfig(config.ReadinessConfig{MaxAttempts: 7, Interval: 3 * time.Second})
	assert.Equal(t, 7, p.MaxAttempts)
	assert.Equal(t, 3*time.Second, p.Interval)
}
