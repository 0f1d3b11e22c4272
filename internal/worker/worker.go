package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/concur-run/concur/internal/config"
	"github.com/concur-run/concur/internal/task"
)

// Entry is one unit of queued work: its position within its batch, the
// batch it belongs to, and its encoded callable.
type Entry struct {
	Index   int
	BatchID uint64
	Encoded task.Encoded
}

// Sink is where a worker reports the outcome of an Entry. Implementations
// are expected to be safe for concurrent use by many workers at once, and
// to wake anyone waiting on the batch's completion.
type Sink interface {
	Deliver(batchID uint64, index int, value any, errRec *task.Record)
}

// State is a Worker's position in its lifecycle.
type State int32

const (
	StateInitializing State = iota
	StateIdle
	StateRunning
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// pollInterval is how long a worker blocks on an empty queue before
// re-checking the shutdown flag when the configured WorkerSleep is not
// positive.
const pollInterval = 10 * time.Millisecond

// Worker is a single long-lived execution context. Its zero value is not
// usable; construct one with New.
type Worker struct {
	ID    int
	state atomic.Int32
	alive atomic.Bool
}

// New creates a worker identified by id, starting in the initializing
// state.
func New(id int) *Worker {
	w := &Worker{ID: id}
	w.state.Store(int32(StateInitializing))
	return w
}

// State reports the worker's current lifecycle position.
func (w *Worker) State() State { return State(w.state.Load()) }

// Alive reports whether the worker's Run goroutine is still executing. A
// worker that is not alive and whose pool is not terminated is considered
// lost by the pool's health check.
func (w *Worker) Alive() bool { return w.alive.Load() }

// Run is the worker's entire lifetime. It signals readiness on ready,
// then repeatedly pops one entry from queue at a time until shutdown is
// observed or queue is closed, running each entry to completion and
// delivering exactly one outcome to sink before picking up the next.
func (w *Worker) Run(ready *sync.WaitGroup, queue <-chan Entry, sink Sink, shutdown *atomic.Bool) {
	w.alive.Store(true)
	defer w.alive.Store(false)

	w.state.Store(int32(StateIdle))
	ready.Done()

	for {
		if shutdown.Load() {
			w.state.Store(int32(StateShutdown))
			return
		}

		sleep := config.WorkerSleep()
		if sleep <= 0 {
			sleep = pollInterval
		}

		select {
		case entry, ok := <-queue:
			if !ok {
				w.state.Store(int32(StateShutdown))
				return
			}
			w.state.Store(int32(StateRunning))
			w.runEntry(entry, sink)
			w.state.Store(int32(StateIdle))
		case <-time.After(sleep):
			// empty queue; loop back around to re-check shutdown
		}
	}
}

// runEntry decodes and executes a single entry, guaranteeing exactly one
// Deliver call regardless of how the task fails.
func (w *Worker) runEntry(entry Entry, sink Sink) {
	call, err := task.Decode(entry.Encoded)
	if err != nil {
		sink.Deliver(entry.BatchID, entry.Index, nil, task.EncodeError(err))
		return
	}

	var (
		value  any
		runErr error
		catch  panics.Catcher
	)
	catch.Try(func() {
		value, runErr = call()
	})
	if rp := catch.Recovered(); rp != nil {
		runErr = rp.AsError()
	}

	if runErr != nil {
		sink.Deliver(entry.BatchID, entry.Index, nil, task.EncodeError(runErr))
		return
	}
	sink.Deliver(entry.BatchID, entry.Index, value, nil)
}
