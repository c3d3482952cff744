package future

import "sync"

// Map returns a value that resolves to fn(v) once src resolves to v.
// A failure of src, or an error returned by fn, rejects the result.
// fn is never called before src has resolved.
func Map[T, U any](src *Value[T], fn func(T) (U, error)) *Value[U] {
	out := New[U]()
	src.OnSettled(func(v T, err error) {
		if err != nil {
			out.Reject(err)
			return
		}
		u, err := fn(v)
		if err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(u)
	})
	return out
}

// Join returns a value that resolves to the results of all inputs, in
// input order, once every input has resolved. It fails as soon as any
// input fails; no partial slice is ever produced. Joining nothing
// resolves immediately to an empty slice.
func Join[T any](values ...*Value[T]) *Value[[]T] {
	out := New[[]T]()
	if len(values) == 0 {
		out.Resolve([]T{})
		return out
	}

	var mu sync.Mutex
	results := make([]T, len(values))
	remaining := len(values)

	for i, v := range values {
		v.OnSettled(func(val T, err error) {
			if err != nil {
				out.Reject(err)
				return
			}
			mu.Lock()
			results[i] = val
			remaining--
			last := remaining == 0
			mu.Unlock()
			if last {
				out.Resolve(results)
			}
		})
	}
	return out
}

// After returns a value that resolves once every signal succeeded and
// fails with the first signal failure. It is the heterogeneous form of
// Join, used for completion ordering where only success matters.
func After(signals ...Signal) *Value[struct{}] {
	out := New[struct{}]()
	if len(signals) == 0 {
		out.Resolve(struct{}{})
		return out
	}

	var mu sync.Mutex
	remaining := len(signals)

	for _, s := range signals {
		s.Subscribe(func(err error) {
			if err != nil {
				out.Reject(err)
				return
			}
			mu.Lock()
			remaining--
			last := remaining == 0
			mu.Unlock()
			if last {
				out.Resolve(struct{}{})
			}
		})
	}
	return out
}
