// Package parallel is the public surface of the worker-pool substrate: a
// persistent pool of goroutines that runs arbitrary user-supplied
// functions, returning results in input order and surviving per-task
// failure.
//
// Run executes a single function on the process-wide default pool. All,
// Map, ForEach, and RunPool submit many functions as one batch; a failure
// in one does not abort the others — inspect LastErrors for the detail of
// what failed. CreatePool gives a caller its own pool, independent of the
// default one, for when overlapping batches are needed.
//
// The eight tunables in the data model (batch timeout, deadlock
// detection, worker poll backoff, GC hinting, and the promise package's
// await backoff) are exposed here as package-level getters and setters
// plus ResetConfig, matching how the spec's configuration surface is
// shaped: process-wide state, lazily defaulted, mutable by any caller.
package parallel
