package enginepool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/concur-run/concur/internal/config"
	"github.com/concur-run/concur/internal/task"
	"github.com/concur-run/concur/internal/worker"
)

const (
	drainTimeout = 5 * time.Second
	exitTimeout  = time.Second
	collectTick  = time.Millisecond
)

// Pool is a fixed-size set of workers sharing one task queue and one
// result store. Execute calls on the same Pool are serialized: the pool
// dispatches and collects one batch fully before starting the next.
type Pool struct {
	n       int
	queue   chan worker.Entry
	workers []*worker.Worker

	shutdown atomic.Bool
	state    atomic.Int32
	execMu   sync.Mutex
	batchSeq atomic.Uint64

	mu           sync.Mutex
	activeBatch  uint64
	results      map[int]rawResult
	wake         chan struct{}
	lastProgress atomic.Int64
	unhealthy    atomic.Bool

	lastErrMu  sync.Mutex
	lastErrors map[Key]*task.Record
}

// CreatePool constructs a pool of n workers and blocks until every worker
// has reached the startup barrier. n <= 0 defaults to runtime.NumCPU.
func CreatePool(n int) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p := &Pool{
		n:          n,
		queue:      make(chan worker.Entry, n*4),
		lastErrors: map[Key]*task.Record{},
	}
	p.state.Store(int32(StateFresh))

	var ready sync.WaitGroup
	ready.Add(n)
	for i := 0; i < n; i++ {
		w := worker.New(i)
		p.workers = append(p.workers, w)
		go w.Run(&ready, p.queue, p, &p.shutdown)
	}
	ready.Wait() // barrier: no batch may dispatch before every worker is ready

	return p
}

// Deliver implements worker.Sink. It is called concurrently by every
// worker in the pool.
func (p *Pool) Deliver(batchID uint64, index int, value any, errRec *task.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if batchID != p.activeBatch || p.results == nil {
		return // stale delivery from an aborted batch; drop it
	}
	p.results[index] = rawResult{value: value, errRec: errRec}
	p.lastProgress.Store(time.Now().UnixNano())
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Execute runs one batch to completion, returning results ordered exactly
// as items was ordered. A per-item failure does not abort the batch: its
// Outcome carries the reconstructed error and LastErrors records it.
func (p *Pool) Execute(ctx context.Context, items []Item) ([]Outcome, error) {
	if State(p.state.Load()) == StateTerminated {
		return nil, ErrPoolShutdown
	}

	p.execMu.Lock()
	defer p.execMu.Unlock()

	if State(p.state.Load()) == StateTerminated {
		return nil, ErrPoolShutdown
	}
	p.state.CompareAndSwap(int32(StateFresh), int32(StateServing))

	n := len(items)
	out := make([]Outcome, n)
	for i, it := range items {
		out[i] = Outcome{Key: it.Key}
	}
	if n == 0 {
		return out, nil
	}

	batchID := p.batchSeq.Add(1)
	p.mu.Lock()
	p.activeBatch = batchID
	p.results = make(map[int]rawResult, n)
	p.wake = make(chan struct{}, 1)
	p.lastProgress.Store(time.Now().UnixNano())
	p.mu.Unlock()
	p.unhealthy.Store(false)

	defer func() {
		p.mu.Lock()
		p.results = nil
		p.mu.Unlock()
	}()

	for i, it := range items {
		select {
		case p.queue <- worker.Entry{Index: i, BatchID: batchID, Encoded: it.Encoded}:
		case <-ctx.Done():
			return out, ctx.Err()
		}
	}

	cfg := config.Get()
	start := time.Now()
	pending := make(map[int]struct{}, n)
	for i := range items {
		pending[i] = struct{}{}
	}
	freshErrors := map[Key]*task.Record{}
	gcCounter := 0

	for len(pending) > 0 {
		select {
		case <-p.wake:
		case <-time.After(collectTick):
		case <-ctx.Done():
			return out, ctx.Err()
		}

		p.drain(items, out, pending, freshErrors, cfg, &gcCounter)
		if len(pending) == 0 {
			break
		}

		now := time.Now()
		if elapsed := now.Sub(start); elapsed > cfg.MaxTaskTimeout {
			p.timeoutRemaining(items, out, pending, freshErrors, elapsed)
			p.commitLastErrors(freshErrors)
			return out, &BatchTimeoutError{Elapsed: elapsed, Pending: len(pending)}
		}
		if stalled := now.Sub(time.Unix(0, p.lastProgress.Load())); stalled > cfg.DeadlockDetectionInterval {
			p.unhealthy.Store(true)
			p.deadlockRemaining(items, out, pending, freshErrors, stalled)
			p.commitLastErrors(freshErrors)
			return out, &DeadlockError{Elapsed: stalled, Pending: len(pending)}
		}
	}

	p.commitLastErrors(freshErrors)
	return out, nil
}

// drain moves every currently-settled slot out of the pool-wide result
// store and into out, removing it from pending.
func (p *Pool) drain(items []Item, out []Outcome, pending map[int]struct{}, errs map[Key]*task.Record, cfg config.Config, gcCounter *int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for idx := range pending {
		r, ok := p.results[idx]
		if !ok {
			continue
		}
		delete(p.results, idx)
		delete(pending, idx)

		key := items[idx].Key
		if r.errRec != nil {
			out[idx].Err = task.DecodeError(r.errRec)
			errs[key] = r.errRec
		} else {
			out[idx].Value = r.value
		}

		*gcCounter++
		if cfg.GCCheckInterval > 0 && *gcCounter >= cfg.GCCheckInterval {
			*gcCounter = 0
			maybeHintGC(cfg.MemoryThresholdForGC)
		}
	}
}

func (p *Pool) timeoutRemaining(items []Item, out []Outcome, pending map[int]struct{}, errs map[Key]*task.Record, elapsed time.Duration) {
	for idx := range pending {
		rec := task.EncodeError(&BatchTimeoutError{Elapsed: elapsed, Pending: len(pending)})
		out[idx].Err = task.DecodeError(rec)
		errs[items[idx].Key] = rec
	}
}

func (p *Pool) deadlockRemaining(items []Item, out []Outcome, pending map[int]struct{}, errs map[Key]*task.Record, elapsed time.Duration) {
	for idx := range pending {
		rec := task.EncodeError(&DeadlockError{Elapsed: elapsed, Pending: len(pending)})
		out[idx].Err = task.DecodeError(rec)
		errs[items[idx].Key] = rec
	}
}

func (p *Pool) commitLastErrors(fresh map[Key]*task.Record) {
	p.lastErrMu.Lock()
	defer p.lastErrMu.Unlock()
	p.lastErrors = fresh
}

// LastErrors returns the structured error record for every slot that
// failed in the most recently completed batch, keyed by original key.
func (p *Pool) LastErrors() map[Key]*task.Record {
	p.lastErrMu.Lock()
	defer p.lastErrMu.Unlock()
	out := make(map[Key]*task.Record, len(p.lastErrors))
	for k, v := range p.lastErrors {
		out[k] = v
	}
	return out
}

// IsHealthy reports whether every worker is still alive and the most
// recent non-empty batch did not end in a deadlock abort (the flag is
// cleared when the next non-empty Execute starts).
func (p *Pool) IsHealthy() bool {
	if p.unhealthy.Load() {
		return false
	}
	for _, w := range p.workers {
		if !w.Alive() {
			return false
		}
	}
	return true
}

// State reports the pool's current lifecycle position.
func (p *Pool) State() State { return State(p.state.Load()) }

// Shutdown idempotently drains and terminates the pool. It waits up to a
// drain timeout for the queue to empty, signals workers to stop, waits up
// to an exit timeout for them to finish their current task, and then
// considers any stragglers reaped. A terminated pool cannot be reused.
func (p *Pool) Shutdown() {
	if !p.state.CompareAndSwap(int32(StateFresh), int32(StateDraining)) &&
		!p.state.CompareAndSwap(int32(StateServing), int32(StateDraining)) {
		return // already draining or terminated; idempotent no-op
	}

	// Block until any in-flight Execute has released the queue, so we
	// never close it out from under a batch still being dispatched.
	p.execMu.Lock()
	defer p.execMu.Unlock()

	deadline := time.Now().Add(drainTimeout)
	for len(p.queue) > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	p.shutdown.Store(true)
	close(p.queue)

	exitDeadline := time.Now().Add(exitTimeout)
	for _, w := range p.workers {
		for w.State() != worker.StateShutdown && time.Now().Before(exitDeadline) {
			time.Sleep(time.Millisecond)
		}
	}

	p.mu.Lock()
	p.results = nil
	p.mu.Unlock()

	p.state.Store(int32(StateTerminated))
}
