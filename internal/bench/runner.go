package bench

import (
	"fmt"
	"time"

	"github.com/concur-run/concur/parallel"
	"github.com/concur-run/concur/promise"
)

// Scenario is a named, fixed workload the runner knows how to drive
// against parallel or promise and time.
type Scenario string

const (
	ScenarioParallelAll        Scenario = "parallel-all"
	ScenarioParallelMap        Scenario = "parallel-map"
	ScenarioParallelRunPool    Scenario = "parallel-runpool"
	ScenarioPromiseChain       Scenario = "promise-chain"
	ScenarioPromiseCombinators Scenario = "promise-combinators"
)

// Scenarios lists every scenario name the runner accepts, in the order
// reports should display them.
var Scenarios = []Scenario{
	ScenarioParallelAll,
	ScenarioParallelMap,
	ScenarioParallelRunPool,
	ScenarioPromiseChain,
	ScenarioPromiseCombinators,
}

// Runner drives one scenario for a configured number of iterations,
// recording each iteration's wall-clock duration. It plays the role the
// teacher's executor played for cross-language benchmark commands, but
// drives in-process calls into this repository's own packages instead of
// shelling out to a language's benchmark harness.
type Runner struct {
	Workers    int
	Iterations int
}

// NewRunner constructs a Runner with the given worker count and
// iteration count. workers <= 0 and iterations <= 0 are replaced with
// sensible defaults (4 and 10, respectively).
func NewRunner(workers, iterations int) *Runner {
	if workers <= 0 {
		workers = 4
	}
	if iterations <= 0 {
		iterations = 10
	}
	return &Runner{Workers: workers, Iterations: iterations}
}

// Run drives scenario for r.Iterations iterations and returns the
// recorded Run. An unknown scenario name is an error.
func (r *Runner) Run(scenario Scenario) (*Run, error) {
	iterate, err := r.iterator(scenario)
	if err != nil {
		return nil, err
	}

	durations := make([]time.Duration, r.Iterations)
	for i := 0; i < r.Iterations; i++ {
		start := time.Now()
		if err := iterate(); err != nil {
			return nil, fmt.Errorf("bench: scenario %q iteration %d: %w", scenario, i, err)
		}
		durations[i] = time.Since(start)
	}

	return &Run{
		Scenario:   string(scenario),
		Workers:    r.Workers,
		Iterations: r.Iterations,
		Durations:  durations,
	}, nil
}

// iterator resolves scenario to a single-iteration workload closure.
func (r *Runner) iterator(scenario Scenario) (func() error, error) {
	switch scenario {
	case ScenarioParallelAll:
		return r.parallelAllIteration, nil
	case ScenarioParallelMap:
		return r.parallelMapIteration, nil
	case ScenarioParallelRunPool:
		return r.parallelRunPoolIteration, nil
	case ScenarioPromiseChain:
		return promiseChainIteration, nil
	case ScenarioPromiseCombinators:
		return promiseCombinatorsIteration, nil
	default:
		return nil, fmt.Errorf("bench: unknown scenario %q", scenario)
	}
}

func (r *Runner) parallelAllIteration() error {
	tasks := make([]parallel.Func, r.Workers*4)
	for i := range tasks {
		i := i
		tasks[i] = func(...any) (any, error) { return i * i, nil }
	}
	_, err := parallel.All(tasks)
	return err
}

func (r *Runner) parallelMapIteration() error {
	items := make([]any, r.Workers*25)
	for i := range items {
		items[i] = i
	}
	_, err := parallel.Map(items, func(v any) (any, error) {
		return v.(int) * 2, nil
	}, r.Workers)
	return err
}

func (r *Runner) parallelRunPoolIteration() error {
	tasks := make([]parallel.Func, r.Workers*10)
	for i := range tasks {
		i := i
		tasks[i] = func(...any) (any, error) { return i, nil }
	}
	_, err := parallel.RunPool(tasks, r.Workers)
	return err
}

func promiseChainIteration() error {
	_, err := promise.Resolve(1).
		Then(func(v any) (any, error) { return v.(int) + 1, nil }, nil).
		Then(func(v any) (any, error) { return v.(int) * 2, nil }, nil).
		Await()
	return err
}

func promiseCombinatorsIteration() error {
	ps := make([]*promise.Promise, 8)
	for i := range ps {
		i := i
		ps[i] = promise.Async(func() (any, error) { return i, nil })
	}
	_, err := promise.All(ps).Await()
	return err
}
