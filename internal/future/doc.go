// Package future provides single-assignment values that are resolved by an
// asynchronous operation after they are handed out.
//
// A [Value] is created alongside the operation that will settle it (a server
// creation, a remote command) and is consumed through continuations and the
// [Map], [Join] and [After] combinators rather than by blocking reads. This
// is how addresses and completion signals discovered at runtime flow into
// commands that are declared up front.
package future
