package parallel

import (
	"context"

	"github.com/concur-run/concur/internal/enginepool"
	"github.com/concur-run/concur/internal/task"
)

// Pool is a caller-owned worker pool, independent of the process-wide
// default one used by Run, All, Map, and ForEach. Use it when two
// batches must run concurrently without one's timeout or deadlock state
// bleeding into the other.
type Pool struct {
	eng *enginepool.Pool
}

// CreatePool constructs a pool of n workers and blocks until every worker
// has reached its startup barrier. n <= 0 defaults to runtime.NumCPU.
func CreatePool(n int) *Pool {
	return &Pool{eng: enginepool.CreatePool(n)}
}

// All runs every fn in tasks as one batch and returns their results in
// submission order. A per-task failure does not abort the batch: its slot
// in the returned slice is nil and the detail is available from
// (*Pool).LastErrors after All returns.
func (p *Pool) All(tasks []Func) ([]any, error) {
	keys := make([]any, len(tasks))
	for i := range tasks {
		keys[i] = i
	}
	outcomes, err := executeOn(context.Background(), p.eng, keys, tasks, nil)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Value
	}
	return out, nil
}

// LastErrors returns the structured error for every slot that failed in
// this pool's most recently completed batch, keyed by the failed task's
// position in the slice passed to All.
func (p *Pool) LastErrors() map[any]error {
	recs := p.eng.LastErrors()
	out := make(map[any]error, len(recs))
	for k, rec := range recs {
		out[k] = task.DecodeError(rec)
	}
	return out
}

// IsHealthy reports whether every worker in the pool is alive and the
// most recent batch did not end in a deadlock abort.
func (p *Pool) IsHealthy() bool { return p.eng.IsHealthy() }

// Shutdown idempotently drains and terminates the pool. A terminated pool
// cannot be reused; call CreatePool again for a fresh one.
func (p *Pool) Shutdown() { p.eng.Shutdown() }
