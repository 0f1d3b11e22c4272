// Package promise implements a single-assignment future value with
// chainable continuations: pending, fulfilled, or rejected exactly once,
// with then/catch/finally, a timeout race, and a blocking await.
//
// A Promise's state transition is guarded by a mutex rather than the
// channel-based wake-up the parallel package's pool uses: Then may be
// called concurrently from any number of goroutines both before and
// after settlement, and the single-writer discipline has to hold for all
// of them, not just one collector goroutine. Await polls with the
// exponential backoff described by InitialPollSleep/MaxPollSleep rather
// than blocking on a channel close, because the promise model is defined
// against a substrate that may not offer one cooperatively — a thenable
// adopted from an external source, for instance, settles this promise
// from whatever goroutine it likes, and the caller has no channel to
// select on until then.
//
// The combinators that take input promises (All, Race, AllSettled, Any,
// Map) observe those inputs only through Then, so any type that produces
// a *Promise composes with them unmodified. Delay and Async create and
// settle a fresh promise directly rather than through Then.
package promise
