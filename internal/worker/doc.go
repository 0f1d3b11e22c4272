// Package worker implements the long-lived execution context that pulls
// encoded tasks from a pool's shared queue, runs them, and reports exactly
// one outcome per task back to the pool.
//
// A Worker never shares a batch's result slot with another worker and
// never leaves the running state without delivering an outcome — even a
// panicking task is caught and converted into a structured error, since a
// worker that silently died would starve the collector waiting on that
// slot forever.
package worker
