// Package lifecycle owns the process-wide default worker pool: lazy
// construction on first use, transparent recreation if the existing pool
// has been shut down or fails its health check, and a SIGTERM/SIGINT
// handler that drains it gracefully on process termination.
package lifecycle
