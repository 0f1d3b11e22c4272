// Package enginepool implements the fixed-size worker pool that the
// parallel dispatch engine submits batches to: it owns the shared task
// queue and result store, serializes batches one at a time, and drains
// settled slots in input order while watching for whole-batch timeout and
// stalled progress.
//
// A Pool is constructed once with CreatePool and is not reusable once
// Shutdown has run to completion; callers that need overlapping in-flight
// batches create more than one Pool.
package enginepool
