// Package task implements the transport layer that carries user work and its
// outcome across the boundary between the dispatch engine and a worker.
//
// # Overview
//
// Go closures cannot be marshalled: a func value carries a code pointer and,
// for a closure, a pointer to its captured environment, neither of which
// survives a byte-level round trip. Rather than fake closure serialization,
// this package follows a registration model: a task is a value struct that
// names a previously registered function by a stable identifier and carries
// its arguments. Encoding a task produces bytes holding that identifier plus
// the gob-encoded arguments; decoding looks the identifier back up in the
// process-local registry and returns an invokable bound to the decoded
// arguments.
//
// # Errors
//
// User task panics and returned errors are both captured as a Record, a
// small language-neutral struct that survives being written to the shared
// result store and read back by the collector. Record never itself panics:
// EncodeError recovers from any internal failure and falls back to a
// best-effort record.
//
// # Thread Safety
//
// The registry is safe for concurrent Register/Encode/Decode calls from
// many goroutines, matching the producer/consumer shape of the worker pool.
package task
