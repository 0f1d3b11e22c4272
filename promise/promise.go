package promise

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/concur-run/concur/internal/config"
	"github.com/concur-run/concur/internal/timer"
)

// state is a Promise's position in its lifecycle.
type state int

const (
	pending state = iota
	fulfilled
	rejected
)

// Thenable is the explicit interop contract an external future type
// implements to participate in resolution's thenable-chasing rule,
// replacing duck-typed detection of a callable "then" member. Exactly
// one of onFulfilled or onRejected is expected to run, and at most once;
// Promise itself does not need to implement this interface because
// resolving with another *Promise is handled directly, by adoption.
type Thenable interface {
	PromiseThen(onFulfilled func(any), onRejected func(any))
}

// continuation is one registration made via Then: the pair of callbacks
// and the downstream promise their outcome feeds.
type continuation struct {
	onFulfilled func(any) (any, error)
	onRejected  func(any) (any, error)
	downstream  *Promise
}

// Promise is a single-assignment future: pending until exactly one of
// fulfill or rejectFinal first succeeds, after which state and payload
// never change again.
type Promise struct {
	mu      sync.Mutex
	st      state
	value   any
	reason  error
	waiters []continuation
}

func newPending() *Promise {
	return &Promise{st: pending}
}

// New constructs a Promise and invokes executor synchronously with
// resolve/reject callbacks that settle it; only the first call to
// either, across the executor's entire run, has any effect. A panic
// inside executor rejects the promise with the recovered value, the same
// way a thrown exception would.
func New(executor func(resolve func(any), reject func(any))) *Promise {
	p := newPending()
	var called atomic.Bool
	resolve := func(v any) {
		if called.CompareAndSwap(false, true) {
			p.resolve(v)
		}
	}
	reject := func(r any) {
		if called.CompareAndSwap(false, true) {
			p.rejectFinal(asError(r))
		}
	}
	var catch panics.Catcher
	catch.Try(func() {
		executor(resolve, reject)
	})
	if rp := catch.Recovered(); rp != nil && called.CompareAndSwap(false, true) {
		p.rejectFinal(rp.AsError())
	}
	return p
}

// resolve applies the resolution procedure: self-resolution rejects with
// a TypeError, resolving with another *Promise adopts its eventual
// state, resolving with a Thenable chases it (guarded, at most once,
// bounded by ThenableTimeout), and anything else fulfills directly.
func (p *Promise) resolve(x any) {
	if same, ok := x.(*Promise); ok && same == p {
		p.rejectFinal(&TypeError{Msg: "a promise cannot be resolved with itself"})
		return
	}
	if xp, ok := x.(*Promise); ok {
		xp.Then(
			func(v any) (any, error) { p.resolve(v); return nil, nil },
			func(r any) (any, error) { p.rejectFinal(asError(r)); return nil, nil },
		)
		return
	}
	if th, ok := x.(Thenable); ok {
		p.chaseThenable(th)
		return
	}
	p.fulfill(x)
}

// chaseThenable invokes th's Then at most once via a guard flag, racing
// it against ThenableTimeout so a misbehaving thenable can never wedge
// this promise in pending forever.
func (p *Promise) chaseThenable(th Thenable) {
	var once sync.Once
	done := make(chan struct{})
	settle := func(fn func()) {
		once.Do(func() {
			fn()
			close(done)
		})
	}

	func() {
		var catch panics.Catcher
		catch.Try(func() {
			th.PromiseThen(
				func(v any) { settle(func() { p.resolve(v) }) },
				func(r any) { settle(func() { p.rejectFinal(asError(r)) }) },
			)
		})
		if rp := catch.Recovered(); rp != nil {
			settle(func() { p.rejectFinal(rp.AsError()) })
		}
	}()

	select {
	case <-done:
	case <-time.After(config.ThenableTimeout()):
		settle(func() { p.rejectFinal(&TimeoutError{After: config.ThenableTimeout()}) })
	}
}

// settle is the single-writer transition primitive: the first caller to
// find the promise pending wins, flips its state, and drains whoever was
// waiting; every later caller is a silent no-op.
func (p *Promise) settle(v any, r error, s state) bool {
	p.mu.Lock()
	if p.st != pending {
		p.mu.Unlock()
		return false
	}
	p.st = s
	p.value = v
	p.reason = r
	waiters := p.waiters
	p.waiters = nil
	p.mu.Unlock()

	for _, c := range waiters {
		p.runContinuation(c)
	}
	return true
}

func (p *Promise) fulfill(v any) bool      { return p.settle(v, nil, fulfilled) }
func (p *Promise) rejectFinal(r error) bool { return p.settle(nil, r, rejected) }

// snapshot returns the promise's current state and payload under lock.
func (p *Promise) snapshot() (state, any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st, p.value, p.reason
}

// Then registers onFulfilled/onRejected and returns a new promise fed by
// whichever callback the eventual outcome selects. A missing callback
// forwards the outcome through unchanged. Runs immediately (on a new
// goroutine) if this promise has already settled, or is queued to run
// when it does.
func (p *Promise) Then(onFulfilled, onRejected func(any) (any, error)) *Promise {
	down := newPending()
	c := continuation{onFulfilled: onFulfilled, onRejected: onRejected, downstream: down}

	p.mu.Lock()
	if p.st == pending {
		p.waiters = append(p.waiters, c)
		p.mu.Unlock()
		return down
	}
	p.mu.Unlock()

	p.runContinuation(c)
	return down
}

// runContinuation runs exactly one callback selected by this promise's
// settled outcome (or forwards the outcome if that callback is absent),
// settling c.downstream with the result. It runs on its own goroutine so
// that one slow continuation never blocks another registered on the
// same promise.
func (p *Promise) runContinuation(c continuation) {
	go func() {
		st, value, reason := p.snapshot()

		var (
			cb      func(any) (any, error)
			payload any
		)
		switch st {
		case fulfilled:
			cb, payload = c.onFulfilled, value
		case rejected:
			cb, payload = c.onRejected, reason
		default:
			return // unreachable: runContinuation only runs post-settlement
		}

		if cb == nil {
			if st == fulfilled {
				c.downstream.resolve(value)
			} else {
				c.downstream.rejectFinal(reason)
			}
			return
		}

		var (
			result any
			err    error
			catch  panics.Catcher
		)
		catch.Try(func() { result, err = cb(payload) })
		if rp := catch.Recovered(); rp != nil {
			c.downstream.rejectFinal(rp.AsError())
			return
		}
		if err != nil {
			c.downstream.rejectFinal(err)
			return
		}
		c.downstream.resolve(result)
	}()
}

// Catch is Then(nil, handler).
func (p *Promise) Catch(onRejected func(any) (any, error)) *Promise {
	return p.Then(nil, onRejected)
}

// Finally runs handler on both outcomes; its return value is discarded
// unless it errors, in which case that error overrides the outcome of
// the returned promise.
func (p *Promise) Finally(handler func() error) *Promise {
	return p.Then(
		func(v any) (any, error) {
			if err := handler(); err != nil {
				return nil, err
			}
			return v, nil
		},
		func(r any) (any, error) {
			if err := handler(); err != nil {
				return nil, err
			}
			return nil, asError(r)
		},
	)
}

// Timeout returns a promise that rejects with a *TimeoutError if this
// promise has not settled within d, and otherwise mirrors it. The
// underlying computation is never cancelled — only its result is
// discarded once the race is lost.
func (p *Promise) Timeout(d time.Duration) *Promise {
	out := newPending()
	var once sync.Once

	id := timer.Default.After(d.Milliseconds(), func() {
		once.Do(func() { out.rejectFinal(&TimeoutError{After: d}) })
	})

	p.Then(
		func(v any) (any, error) {
			once.Do(func() {
				timer.Default.Clear(id)
				out.resolve(v)
			})
			return nil, nil
		},
		func(r any) (any, error) {
			once.Do(func() {
				timer.Default.Clear(id)
				out.rejectFinal(asError(r))
			})
			return nil, nil
		},
	)
	return out
}

// Await blocks until this promise settles, returning the fulfilled value
// or the rejection reason as an error. It polls with the exponential
// backoff the configuration's initial/max poll sleep describe, matching
// the preemptive-substrate blocking-resolution contract.
func (p *Promise) Await() (any, error) {
	sleep := config.InitialPollSleep()
	maxSleep := config.MaxPollSleep()

	for {
		st, value, reason := p.snapshot()
		switch st {
		case fulfilled:
			return value, nil
		case rejected:
			return nil, reason
		}

		time.Sleep(sleep)
		if sleep < maxSleep {
			sleep *= 2
			if sleep > maxSleep {
				sleep = maxSleep
			}
		}
	}
}
