package future

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnresolved is returned when a value is read before it has settled.
// Reading an unresolved value is a programming error: consumers must only
// read values listed as predecessors of the work that reads them.
var ErrUnresolved = errors.New("value read before it was resolved")

// Signal is anything that settles exactly once with success or an error.
// Every [Value] is a Signal regardless of its element type.
type Signal interface {
	Subscribe(fn func(err error))
}

// Value is a single-assignment cell plus a list of pending continuations.
// Continuations run in registration order across goroutines: one
// registered while earlier ones are still running is queued behind them.
type Value[T any] struct {
	mu       sync.Mutex
	settled  bool
	draining bool
	val      T
	err      error
	conts    []func(T, error)
	done     chan struct{}
}

// New returns an unresolved value.
func New[T any]() *Value[T] {
	return &Value[T]{done: make(chan struct{})}
}

// Resolved returns a value that is already resolved to v.
func Resolved[T any](v T) *Value[T] {
	f := New[T]()
	f.Resolve(v)
	return f
}

// Rejected returns a value that has already failed with err.
func Rejected[T any](err error) *Value[T] {
	f := New[T]()
	f.Reject(err)
	return f
}

// Resolve assigns v. It reports false if the value was already settled,
// in which case v is discarded.
func (f *Value[T]) Resolve(v T) bool {
	return f.settle(v, nil)
}

// Reject fails the value with err. It reports false if the value was
// already settled.
func (f *Value[T]) Reject(err error) bool {
	if err == nil {
		err = errors.New("rejected with nil error")
	}
	var zero T
	return f.settle(zero, err)
}

func (f *Value[T]) settle(v T, err error) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.val = v
	f.err = err
	f.draining = true
	close(f.done)
	f.drain()
	return true
}

// drain runs queued continuations outside the lock so they may register
// more work, picking up anything registered meanwhile. It is called with
// f.mu held and returns with it released.
func (f *Value[T]) drain() {
	for len(f.conts) > 0 {
		conts := f.conts
		f.conts = nil
		f.mu.Unlock()
		for _, fn := range conts {
			fn(f.val, f.err)
		}
		f.mu.Lock()
	}
	f.draining = false
	f.mu.Unlock()
}

// OnSettled registers fn to run once the value settles. Continuations run
// in registration order, each exactly once. If the value is already
// settled and nothing is queued, fn runs immediately on the calling
// goroutine; otherwise it runs on the goroutine draining the queue.
func (f *Value[T]) OnSettled(fn func(T, error)) {
	f.mu.Lock()
	if !f.settled || f.draining {
		f.conts = append(f.conts, fn)
		f.mu.Unlock()
		return
	}
	v, err := f.val, f.err
	f.mu.Unlock()
	fn(v, err)
}

// Subscribe implements Signal.
func (f *Value[T]) Subscribe(fn func(err error)) {
	f.OnSettled(func(_ T, err error) { fn(err) })
}

// Result returns the settled value. It returns ErrUnresolved when called
// before the value settled.
func (f *Value[T]) Result() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.settled {
		var zero T
		return zero, ErrUnresolved
	}
	return f.val, f.err
}

// Settled reports whether the value has been resolved or rejected.
func (f *Value[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Done is closed when the value settles. It exists for top-level waiters
// (the CLI, tests); graph code composes with continuations instead.
func (f *Value[T]) Done() <-chan struct{} {
	return f.done
}

// String renders the value for logs.
func (f *Value[T]) String() string {
	v, err := f.Result()
	switch {
	case errors.Is(err, ErrUnresolved):
		return "<unresolved>"
	case err != nil:
		return fmt.Sprintf("<failed: %v>", err)
	default:
		return fmt.Sprint(v)
	}
}
