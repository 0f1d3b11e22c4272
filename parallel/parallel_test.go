package parallel

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func resetDefaultPool(t *testing.T) {
	t.Helper()
	Shutdown()
	t.Cleanup(Shutdown)
}

func TestRunAddsArguments(t *testing.T) {
	resetDefaultPool(t)

	add := func(args ...any) (any, error) {
		return args[0].(int) + args[1].(int), nil
	}
	v, err := Run(add, 5, 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v != 8 {
		t.Fatalf("got %v, want 8", v)
	}
}

func TestAllPreservesOrder(t *testing.T) {
	resetDefaultPool(t)

	one := func(...any) (any, error) { return 1, nil }
	two := func(...any) (any, error) { return 2, nil }
	three := func(...any) (any, error) { return 3, nil }

	out, err := All([]Func{one, two, three})
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	want := []any{1, 2, 3}
	for i, w := range want {
		if out[i] != w {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], w)
		}
	}
}

func TestMapDoublesEachItem(t *testing.T) {
	resetDefaultPool(t)

	items := []any{1, 2, 3, 4, 5}
	out, err := Map(items, func(v any) (any, error) {
		return v.(int) * 2, nil
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	want := []any{2, 4, 6, 8, 10}
	for i, w := range want {
		if out[i] != w {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], w)
		}
	}
}

func TestAllContainsPerTaskFailure(t *testing.T) {
	resetDefaultPool(t)

	ok1 := func(...any) (any, error) { return "success", nil }
	fails := func(...any) (any, error) { return nil, errors.New("err") }
	ok2 := func(...any) (any, error) { return "success2", nil }

	out, err := All([]Func{ok1, fails, ok2})
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if out[0] != "success" || out[1] != nil || out[2] != "success2" {
		t.Fatalf("got %v", out)
	}

	last := LastErrors()
	failed, ok := last[1]
	if !ok {
		t.Fatal("expected LastErrors to record slot 1")
	}
	if failed.Error() != "err" {
		t.Fatalf("LastErrors[1] = %q, want %q", failed.Error(), "err")
	}
}

func TestRunPoolPreservesOrderUnderConcurrencyLimit(t *testing.T) {
	const n = 100
	tasks := make([]Func, n)
	for i := 0; i < n; i++ {
		i := i
		tasks[i] = func(...any) (any, error) { return i * i, nil }
	}

	out, err := RunPool(tasks, 2)
	if err != nil {
		t.Fatalf("RunPool: %v", err)
	}
	if len(out) != n {
		t.Fatalf("got %d results, want %d", len(out), n)
	}
	for i := 0; i < n; i++ {
		if out[i] != i*i {
			t.Fatalf("out[%d] = %v, want %d", i, out[i], i*i)
		}
	}
}

func TestExecuteOfSleepingTasksRunsInParallel(t *testing.T) {
	resetDefaultPool(t)

	sleeper := func(...any) (any, error) {
		time.Sleep(150 * time.Millisecond)
		return nil, nil
	}
	tasks := []Func{sleeper, sleeper, sleeper, sleeper}

	start := time.Now()
	if _, err := All(tasks); err != nil {
		t.Fatalf("All: %v", err)
	}
	if elapsed := time.Since(start); elapsed >= 500*time.Millisecond {
		t.Fatalf("elapsed %v, want well under 500ms for 4 parallel 150ms tasks", elapsed)
	}
}

func TestForEachRunsSideEffectsOnly(t *testing.T) {
	resetDefaultPool(t)

	seen := make(chan int, 5)
	err := ForEach([]any{1, 2, 3, 4, 5}, func(v any) error {
		seen <- v.(int)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	close(seen)
	sum := 0
	for v := range seen {
		sum += v
	}
	if sum != 15 {
		t.Fatalf("sum of side effects = %d, want 15", sum)
	}
}

func TestMapFailureContainsToItsChunk(t *testing.T) {
	resetDefaultPool(t)

	out, err := Map([]any{1, 2, 3, 4}, func(v any) (any, error) {
		if v.(int) == 3 {
			return nil, fmt.Errorf("boom on %d", v)
		}
		return v.(int) * 10, nil
	}, 4)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if out[0] != 10 || out[1] != 20 || out[3] != 40 {
		t.Fatalf("unaffected chunks changed: %v", out)
	}
	if out[2] != nil {
		t.Fatalf("out[2] = %v, want nil for the failed chunk", out[2])
	}
}

func TestCreatePoolIsIndependentOfDefaultPool(t *testing.T) {
	resetDefaultPool(t)

	p := CreatePool(2)
	defer p.Shutdown()

	out, err := p.All([]Func{
		func(...any) (any, error) { return "a", nil },
		func(...any) (any, error) { return "b", nil },
	})
	if err != nil {
		t.Fatalf("Pool.All: %v", err)
	}
	if out[0] != "a" || out[1] != "b" {
		t.Fatalf("got %v", out)
	}
	if !p.IsHealthy() {
		t.Fatal("expected a freshly created pool to be healthy")
	}
}

func TestResetConfigRestoresDefaults(t *testing.T) {
	SetMaxTaskTimeout(time.Minute)
	ResetConfig()
	if MaxTaskTimeout() != 30*time.Second {
		t.Fatalf("MaxTaskTimeout after reset = %v, want 30s", MaxTaskTimeout())
	}
}
