package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/concur-run/concur/internal/task"
)

type recordingSink struct {
	mu      sync.Mutex
	values  map[int]any
	records map[int]*task.Record
}

func newRecordingSink() *recordingSink {
	return &recordingSink{values: map[int]any{}, records: map[int]*task.Record{}}
}

func (s *recordingSink) Deliver(batchID uint64, index int, value any, errRec *task.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errRec != nil {
		s.records[index] = errRec
		return
	}
	s.values[index] = value
}

func startWorker(t *testing.T, queue chan Entry, sink Sink, shutdown *atomic.Bool) *Worker {
	t.Helper()
	w := New(1)
	var ready sync.WaitGroup
	ready.Add(1)
	go w.Run(&ready, queue, sink, shutdown)
	ready.Wait()
	return w
}

func TestWorkerRunsTaskAndDelivers(t *testing.T) {
	id := task.Anonymous(func(args ...any) (any, error) {
		return args[0].(int) * 2, nil
	})
	defer task.Deregister(id)

	enc, err := task.Encode(id, []any{21})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	queue := make(chan Entry, 1)
	sink := newRecordingSink()
	var shutdown atomic.Bool
	w := startWorker(t, queue, sink, &shutdown)

	queue <- Entry{Index: 0, BatchID: 1, Encoded: enc}

	deadline := time.After(time.Second)
	for {
		sink.mu.Lock()
		v, ok := sink.values[0]
		sink.mu.Unlock()
		if ok {
			if v.(int) != 42 {
				t.Fatalf("got %v, want 42", v)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for delivery")
		case <-time.After(time.Millisecond):
		}
	}

	shutdown.Store(true)
	waitForState(t, w, StateShutdown)
}

func TestWorkerCatchesPanicAsError(t *testing.T) {
	id := task.Anonymous(func(args ...any) (any, error) {
		panic("boom")
	})
	defer task.Deregister(id)

	enc, _ := task.Encode(id, nil)
	queue := make(chan Entry, 1)
	sink := newRecordingSink()
	var shutdown atomic.Bool
	startWorker(t, queue, sink, &shutdown)

	queue <- Entry{Index: 0, BatchID: 1, Encoded: enc}

	deadline := time.After(time.Second)
	for {
		sink.mu.Lock()
		rec, ok := sink.records[0]
		sink.mu.Unlock()
		if ok {
			if rec.Message == "" {
				t.Fatal("expected a non-empty panic message")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for delivery")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestWorkerExitsOnShutdownFlag(t *testing.T) {
	queue := make(chan Entry)
	sink := newRecordingSink()
	var shutdown atomic.Bool
	w := startWorker(t, queue, sink, &shutdown)

	shutdown.Store(true)
	waitForState(t, w, StateShutdown)
}

func TestWorkerExitsOnClosedQueue(t *testing.T) {
	queue := make(chan Entry)
	sink := newRecordingSink()
	var shutdown atomic.Bool
	w := startWorker(t, queue, sink, &shutdown)

	close(queue)
	waitForState(t, w, StateShutdown)
}

func waitForState(t *testing.T, w *Worker, want State) {
	t.Helper()
	deadline := time.After(time.Second)
	for w.State() != want {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for state %v, got %v", want, w.State())
		case <-time.After(time.Millisecond):
		}
	}
}
