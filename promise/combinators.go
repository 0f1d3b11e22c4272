package promise

import (
	"sync"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/concur-run/concur/internal/timer"
)

// Resolve returns a promise immediately settled by the resolution
// procedure applied to v (so Resolve(anotherPromise) adopts it, and
// Resolve(thenable) chases it, same as New's resolve callback).
func Resolve(v any) *Promise {
	return New(func(resolve func(any), _ func(any)) { resolve(v) })
}

// Reject returns a promise immediately rejected with r, with no
// thenable-chasing on the reason.
func Reject(r any) *Promise {
	return New(func(_ func(any), reject func(any)) { reject(r) })
}

// Async runs fn on its own goroutine and settles the returned promise
// with its outcome, recovering a panic the same way a worker task does.
func Async(fn func() (any, error)) *Promise {
	p := newPending()
	go func() {
		var (
			value any
			err   error
			catch panics.Catcher
		)
		catch.Try(func() { value, err = fn() })
		if rp := catch.Recovered(); rp != nil {
			err = rp.AsError()
		}
		if err != nil {
			p.rejectFinal(err)
			return
		}
		p.resolve(value)
	}()
	return p
}

// Run runs fn asynchronously and blocks for its outcome: Async(fn).Await().
func Run(fn func() (any, error)) (any, error) {
	return Async(fn).Await()
}

// Delay returns a promise that fulfills with nil after d, scheduled on
// the timer subsystem rather than a busy wait.
func Delay(d time.Duration) *Promise {
	p := newPending()
	timer.Default.After(d.Milliseconds(), func() { p.fulfill(nil) })
	return p
}

// All resolves with every input's fulfilled value, in the same order,
// once all of them fulfill; it rejects with the first rejection reason
// observed, whichever input produced it. An empty input resolves
// immediately with an empty slice.
func All(ps []*Promise) *Promise {
	out := newPending()
	if len(ps) == 0 {
		out.fulfill([]any{})
		return out
	}

	values := make([]any, len(ps))
	var mu sync.Mutex
	remaining := len(ps)

	for i, p := range ps {
		i := i
		p.Then(
			func(v any) (any, error) {
				mu.Lock()
				values[i] = v
				remaining--
				done := remaining == 0
				mu.Unlock()
				if done {
					out.fulfill(append([]any(nil), values...))
				}
				return nil, nil
			},
			func(r any) (any, error) {
				out.rejectFinal(asError(r))
				return nil, nil
			},
		)
	}
	return out
}

// Race settles with the outcome of whichever input settles first,
// fulfilled or rejected. An empty input never settles.
func Race(ps []*Promise) *Promise {
	out := newPending()
	for _, p := range ps {
		p.Then(
			func(v any) (any, error) { out.fulfill(v); return nil, nil },
			func(r any) (any, error) { out.rejectFinal(asError(r)); return nil, nil },
		)
	}
	return out
}

// Status is the discriminator in an AllSettled result.
type Status string

const (
	StatusFulfilled Status = "fulfilled"
	StatusRejected  Status = "rejected"
)

// Settled is one input's outcome in an AllSettled result: Value is set
// when Status is StatusFulfilled, Reason when it is StatusRejected.
type Settled struct {
	Status Status
	Value  any
	Reason error
}

// AllSettled resolves with one Settled per input, in input order, once
// every input has settled one way or the other. It never rejects.
func AllSettled(ps []*Promise) *Promise {
	out := newPending()
	if len(ps) == 0 {
		out.fulfill([]Settled{})
		return out
	}

	results := make([]Settled, len(ps))
	var mu sync.Mutex
	remaining := len(ps)
	complete := func(i int, s Settled) {
		mu.Lock()
		results[i] = s
		remaining--
		done := remaining == 0
		mu.Unlock()
		if done {
			out.fulfill(append([]Settled(nil), results...))
		}
	}

	for i, p := range ps {
		i := i
		p.Then(
			func(v any) (any, error) {
				complete(i, Settled{Status: StatusFulfilled, Value: v})
				return nil, nil
			},
			func(r any) (any, error) {
				complete(i, Settled{Status: StatusRejected, Reason: asError(r)})
				return nil, nil
			},
		)
	}
	return out
}

// Any resolves with the first input to fulfill. If every input rejects,
// it rejects with an *AggregateError carrying every reason in input
// order. An empty input rejects immediately with ErrNoPromisesProvided.
func Any(ps []*Promise) *Promise {
	out := newPending()
	if len(ps) == 0 {
		out.rejectFinal(ErrNoPromisesProvided)
		return out
	}

	reasons := make([]error, len(ps))
	var mu sync.Mutex
	remaining := len(ps)

	for i, p := range ps {
		i := i
		p.Then(
			func(v any) (any, error) { out.fulfill(v); return nil, nil },
			func(r any) (any, error) {
				mu.Lock()
				reasons[i] = asError(r)
				remaining--
				done := remaining == 0
				mu.Unlock()
				if done {
					out.rejectFinal(&AggregateError{Reasons: append([]error(nil), reasons...)})
				}
				return nil, nil
			},
		)
	}
	return out
}

// Map is All(Async(c) for every c in callables): it runs each callable
// concurrently and resolves with their results in order.
func Map(callables []func() (any, error)) *Promise {
	ps := make([]*Promise, len(callables))
	for i, c := range callables {
		ps[i] = Async(c)
	}
	return All(ps)
}
