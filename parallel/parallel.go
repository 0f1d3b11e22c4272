package parallel

import (
	"context"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"

	"github.com/concur-run/concur/internal/enginepool"
	"github.com/concur-run/concur/internal/lifecycle"
	"github.com/concur-run/concur/internal/task"
)

// Run executes fn with args on the process-wide default pool and returns
// its single result. A panic inside fn is recovered and reported as an
// error, matching every other entry point in this package.
func Run(fn Func, args ...any) (any, error) {
	out, err := executeOn(context.Background(), lifecycle.DefaultPool(), []any{0}, []Func{fn}, [][]any{args})
	if err != nil {
		return nil, err
	}
	return out[0].Value, out[0].Err
}

// All runs every fn in tasks as one batch on the process-wide default
// pool. A per-task failure is contained: its slot in the result is nil
// and LastErrors carries the detail.
func All(tasks []Func) ([]any, error) {
	keys := make([]any, len(tasks))
	for i := range tasks {
		keys[i] = i
	}
	outcomes, err := executeOn(context.Background(), lifecycle.DefaultPool(), keys, tasks, nil)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Value
	}
	return out, nil
}

// Map splits items into as many roughly equal chunks as there are workers
// (default runtime.NumCPU, or the optional workers argument), applies
// callback to every item sequentially within its chunk, and merges the
// results back in original order. A failing item fails only its own
// chunk: the other chunks' results are unaffected, and the failed
// chunk's items come back nil. Inspect LastErrors for detail.
func Map(items []any, callback func(any) (any, error), workers ...int) ([]any, error) {
	if len(items) == 0 {
		return []any{}, nil
	}
	ranges := chunkRanges(len(items), resolveWorkers(workers))

	keys := make([]any, len(ranges))
	fns := make([]Func, len(ranges))
	for i, r := range ranges {
		chunk := items[r[0]:r[1]]
		keys[i] = i
		fns[i] = func(_ ...any) (any, error) {
			out := make([]any, len(chunk))
			for j, item := range chunk {
				v, err := callback(item)
				if err != nil {
					return nil, err
				}
				out[j] = v
			}
			return out, nil
		}
	}

	outcomes, err := executeOn(context.Background(), lifecycle.DefaultPool(), keys, fns, nil)
	if err != nil {
		return nil, err
	}

	merged := make([]any, len(items))
	for i, r := range ranges {
		if outcomes[i].Err != nil {
			continue // this chunk failed; its slots stay nil
		}
		vals, _ := outcomes[i].Value.([]any)
		copy(merged[r[0]:r[1]], vals)
	}
	return merged, nil
}

// ForEach has the same chunking and failure containment as Map but
// discards every per-item return value: only side effects persist. The
// returned error is non-nil only for a pool-wide failure (batch timeout,
// deadlock, or a shut-down pool); per-item failures are recorded in
// LastErrors instead.
func ForEach(items []any, callback func(any) error, workers ...int) error {
	_, err := Map(items, func(item any) (any, error) { return nil, callback(item) }, workers...)
	return err
}

// RunPool runs tasks against a fresh, bounded-concurrency pool that exists
// only for the duration of the call: at most maxConcurrency run at once,
// and the pool is torn down before RunPool returns. Unlike All, Map, and
// ForEach it never touches the process-wide default pool, so it is safe
// to call with a different concurrency ceiling per invocation without
// perturbing other callers.
func RunPool(tasks []Func, maxConcurrency int) ([]any, error) {
	if len(tasks) == 0 {
		return []any{}, nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = runtime.NumCPU()
	}

	ids := make([]string, len(tasks))
	encoded := make([]task.Encoded, len(tasks))
	for i, fn := range tasks {
		ids[i] = task.Anonymous(fn)
		enc, err := task.Encode(ids[i], nil)
		if err != nil {
			for _, id := range ids[:i+1] {
				task.Deregister(id)
			}
			return nil, err
		}
		encoded[i] = enc
	}
	defer func() {
		for _, id := range ids {
			task.Deregister(id)
		}
	}()

	type slot struct {
		value any
		err   *task.Record
	}

	rp := pool.NewWithResults[slot]().WithMaxGoroutines(maxConcurrency)
	for _, enc := range encoded {
		enc := enc
		rp.Go(func() slot {
			call, err := task.Decode(enc)
			if err != nil {
				return slot{err: task.EncodeError(err)}
			}
			var (
				value any
				catch panics.Catcher
			)
			catch.Try(func() { value, err = call() })
			if rp := catch.Recovered(); rp != nil {
				err = rp.AsError()
			}
			if err != nil {
				return slot{err: task.EncodeError(err)}
			}
			return slot{value: value}
		})
	}
	results := rp.Wait()

	out := make([]any, len(results))
	errs := map[any]*task.Record{}
	for i, s := range results {
		if s.err != nil {
			errs[i] = s.err
			continue
		}
		out[i] = s.value
	}
	setLastErrors(errs)
	return out, nil
}

// Shutdown terminates the process-wide default pool. The next call to
// Run, All, Map, or ForEach constructs a fresh one lazily.
func Shutdown() { lifecycle.ShutdownDefaultPool() }

// executeOn registers each fn under a fresh anonymous identifier, encodes
// it together with its positional args, runs the batch on eng, and
// deregisters every identifier before returning regardless of outcome. It
// also refreshes the package-level LastErrors snapshot from eng.
func executeOn(ctx context.Context, eng *enginepool.Pool, keys []any, fns []Func, argsList [][]any) ([]enginepool.Outcome, error) {
	items := make([]enginepool.Item, len(fns))
	ids := make([]string, len(fns))
	for i, fn := range fns {
		ids[i] = task.Anonymous(fn)
		var args []any
		if argsList != nil {
			args = argsList[i]
		}
		enc, err := task.Encode(ids[i], args)
		if err != nil {
			for _, id := range ids[:i+1] {
				task.Deregister(id)
			}
			return nil, err
		}
		items[i] = enginepool.Item{Key: keys[i], Encoded: enc}
	}
	defer func() {
		for _, id := range ids {
			task.Deregister(id)
		}
	}()

	out, err := eng.Execute(ctx, items)
	setLastErrors(eng.LastErrors())
	return out, err
}

func resolveWorkers(workers []int) int {
	if len(workers) > 0 && workers[0] > 0 {
		return workers[0]
	}
	return runtime.NumCPU()
}

// chunkRanges splits n items into min(workers, n) balanced [start, end)
// ranges whose sizes differ by at most one.
func chunkRanges(n, workers int) [][2]int {
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	base := n / workers
	rem := n % workers
	ranges := make([][2]int, 0, workers)
	start := 0
	for i := 0; i < workers; i++ {
		size := base
		if i < rem {
			size++
		}
		ranges = append(ranges, [2]int{start, start + size})
		start += size
	}
	return ranges
}

var (
	lastErrMu sync.Mutex
	lastErr   map[any]*task.Record
)

func setLastErrors(errs map[any]*task.Record) {
	lastErrMu.Lock()
	defer lastErrMu.Unlock()
	lastErr = errs
}

// LastErrors returns the structured error for every slot that failed in
// the most recent All, Map, ForEach, or RunPool call, keyed by the
// position (or, for Map/ForEach, the chunk index) that failed.
func LastErrors() map[any]error {
	lastErrMu.Lock()
	errs := lastErr
	lastErrMu.Unlock()

	out := make(map[any]error, len(errs))
	for k, rec := range errs {
		out[k] = task.DecodeError(rec)
	}
	return out
}
