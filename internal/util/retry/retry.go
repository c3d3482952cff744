package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// policy is the schedule an operation is retried on.
// A negative maxRetries never gives up on its own.
type policy struct {
	maxRetries int
	delay      time.Duration
	maxDelay   time.Duration
	multiplier float64
	retryFatal bool
	onRetry    func(attempt int, err error)
}

// Option adjusts the retry policy.
type Option func(*policy)

func defaultPolicy() *policy {
	return &policy{
		maxRetries: 5,
		delay:      time.Second,
		maxDelay:   30 * time.Second,
		multiplier: 2,
	}
}

// exhausted reports whether attempt (1-based) was the last one allowed.
func (p *policy) exhausted(attempt int) bool {
	return p.maxRetries >= 0 && attempt > p.maxRetries
}

// backoff returns the wait after the current delay and advances it.
func (p *policy) backoff() time.Duration {
	wait := p.delay
	next := time.Duration(float64(p.delay) * p.multiplier)
	if next > p.maxDelay {
		next = p.maxDelay
	}
	p.delay = next
	return wait
}

// ExhaustedError is returned when every allowed attempt failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// WithExponentialBackoff runs operation until it succeeds, returns a Fatal
// error, runs out of retries or ctx is done. The wait between attempts grows
// by the multiplier up to the maximum delay.
func WithExponentialBackoff(ctx context.Context, operation func() error, opts ...Option) error {
	p := defaultPolicy()
	for _, opt := range opts {
		opt(p)
	}

	for attempt := 1; ; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		if IsFatal(err) && !p.retryFatal {
			return fmt.Errorf("fatal error (not retrying): %w", err)
		}
		if p.onRetry != nil {
			p.onRetry(attempt, err)
		}
		if p.exhausted(attempt) {
			return &ExhaustedError{Attempts: attempt, Err: err}
		}

		timer := time.NewTimer(p.backoff())
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("context cancelled after %d attempts: %w", attempt, ctx.Err())
		case <-timer.C:
		}
	}
}

// WithMaxRetries allows n retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(p *policy) { p.maxRetries = n }
}

// WithUnlimitedRetries retries until success, a fatal error or context cancellation.
func WithUnlimitedRetries() Option {
	return func(p *policy) { p.maxRetries = -1 }
}

// WithRetryFatal retries errors marked Fatal as well. Probes use it when
// every failure, including one a lower layer gave up on, is expected.
func WithRetryFatal() Option {
	return func(p *policy) { p.retryFatal = true }
}

// WithConstantDelay waits d between every attempt.
func WithConstantDelay(d time.Duration) Option {
	return func(p *policy) {
		p.delay, p.maxDelay, p.multiplier = d, d, 1
	}
}

// WithOnRetry registers a callback invoked after every failed attempt.
func WithOnRetry(fn func(attempt int, err error)) Option {
	return func(p *policy) { p.onRetry = fn }
}

// WithInitialDelay sets the wait after the first failure.
func WithInitialDelay(d time.Duration) Option {
	return func(p *policy) { p.delay = d }
}

// WithMaxDelay caps the wait between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(p *policy) { p.maxDelay = d }
}

// WithMultiplier sets the backoff growth factor.
func WithMultiplier(m float64) Option {
	return func(p *policy) { p.multiplier = m }
}

// FatalError marks an error that must not be retried.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

// Fatal marks err as non-retryable. Fatal(nil) is nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether err or anything it wraps was marked Fatal.
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
