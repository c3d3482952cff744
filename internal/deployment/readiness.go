package deployment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/paxosfleet/internal/config"
	"github.com/imamik/paxosfleet/internal/util/retry"
)

// Probe checks once whether a machine is ready.
type Probe func(ctx context.Context) error

// Poller repeats a probe at a constant interval until it succeeds.
// Every probe error is retried, including ones marked retry.Fatal such as
// SSH authentication failures before the admin user exists.
// MaxAttempts <= 0 retries until ctx is done.
type Poller struct {
	MaxAttempts int
	Interval    time.Duration
	// OnAttempt is called after every failed probe.
	OnAttempt func(attempt int, err error)
}

// PollerFromConfig returns the poller configured by cfg.
func PollerFromConfig(cfg config.ReadinessConfig) Poller {
	return Poller{MaxAttempts: cfg.MaxAttempts, Interval: cfg.Interval}
}

// Await runs probe until it succeeds. A bounded poller that runs out of
// attempts returns ErrNotReady wrapping the last probe error.
func (p Poller) Await(ctx context.Context, probe Probe) error {
	opts := []retry.Option{retry.WithConstantDelay(p.Interval), retry.WithRetryFatal()}
	if p.MaxAttempts > 0 {
		opts = append(opts, retry.WithMaxRetries(p.MaxAttempts-1))
	} else {
		opts = append(opts, retry.WithUnlimitedRetries())
	}
	if p.OnAttempt != nil {
		opts = append(opts, retry.WithOnRetry(p.OnAttempt))
	}

	err := retry.WithExponentialBackoff(ctx, func() error {
		return probe(ctx)
	}, opts...)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	attempts := p.MaxAttempts
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		attempts = exhausted.Attempts
		err = exhausted.Err
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrNotReady, attempts, err)
}
