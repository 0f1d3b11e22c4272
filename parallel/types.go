package parallel

import "github.com/concur-run/concur/internal/task"

// Func is a unit of user work submitted to a pool. For Run it is called
// with the explicit arguments the caller passes through; for All, Map,
// ForEach, and RunPool it is typically a closure over its own state and
// called with no arguments.
type Func = task.Func

// Result pairs the original submission key with what it settled to,
// mirroring the associative form of a batch result. No function in this
// package returns it; All, Map, RunPool, and Pool.All return plain slices.
type Result struct {
	Key   any
	Value any
	Err   error
}
