// Package config holds the process-wide tunables shared by the parallel
// and promise engines: batch timeouts, deadlock detection, GC hinting, and
// promise poll/backoff bounds. It is intentionally dependency-free so the
// core engines never need a CLI or config-file library to function. The
// concurbench command line tool (internal/bench/cmd) does not bind these
// values to flags, so it runs with the defaults.
package config
