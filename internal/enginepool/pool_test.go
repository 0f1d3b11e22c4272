package enginepool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/concur-run/concur/internal/config"
	"github.com/concur-run/concur/internal/task"
)

func itemsWithKeys(t *testing.T, specs []struct {
	key Key
	fn  task.Func
	arg any
}) []Item {
	t.Helper()
	items := make([]Item, len(specs))
	for i, s := range specs {
		id := task.Anonymous(s.fn)
		t.Cleanup(func() { task.Deregister(id) })
		enc, err := task.Encode(id, []any{s.arg})
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		items[i] = Item{Key: s.key, Encoded: enc}
	}
	return items
}

func TestExecuteEmptyBatch(t *testing.T) {
	p := CreatePool(2)
	defer p.Shutdown()

	out, err := p.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}
}

func TestExecutePreservesKeyOrder(t *testing.T) {
	p := CreatePool(3)
	defer p.Shutdown()

	double := func(args ...any) (any, error) { return args[0].(int) * 2, nil }

	items := itemsWithKeys(t, []struct {
		key Key
		fn  task.Func
		arg any
	}{
		{"a", double, 1},
		{"b", double, 2},
		{"c", double, 3},
	})

	out, err := p.Execute(context.Background(), items)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := map[Key]int{"a": 2, "b": 4, "c": 6}
	for i, o := range out {
		if o.Key != items[i].Key {
			t.Fatalf("slot %d key = %v, want %v", i, o.Key, items[i].Key)
		}
		if o.Value.(int) != want[o.Key] {
			t.Fatalf("slot %d value = %v, want %v", i, o.Value, want[o.Key])
		}
	}
}

func TestExecuteContainsPerTaskFailure(t *testing.T) {
	p := CreatePool(2)
	defer p.Shutdown()

	ok := func(args ...any) (any, error) { return args[0], nil }
	fail := func(args ...any) (any, error) { return nil, errors.New("err") }

	items := itemsWithKeys(t, []struct {
		key Key
		fn  task.Func
		arg any
	}{
		{0, ok, "success"},
		{1, fail, nil},
		{2, ok, "success2"},
	})

	out, err := p.Execute(context.Background(), items)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out[0].Value != "success" || out[0].Err != nil {
		t.Fatalf("slot 0 = %+v", out[0])
	}
	if out[1].Err == nil {
		t.Fatalf("slot 1 expected an error")
	}
	if out[2].Value != "success2" || out[2].Err != nil {
		t.Fatalf("slot 2 = %+v", out[2])
	}

	last := p.LastErrors()
	rec, ok := last[Key(1)]
	if !ok {
		t.Fatal("expected LastErrors to record slot 1")
	}
	if rec.Message != "err" {
		t.Fatalf("LastErrors message = %q", rec.Message)
	}
}

func TestExecuteSerializesSuccessiveBatches(t *testing.T) {
	p := CreatePool(4)
	defer p.Shutdown()

	noop := func(args ...any) (any, error) { return nil, nil }
	for i := 0; i < 5; i++ {
		items := itemsWithKeys(t, []struct {
			key Key
			fn  task.Func
			arg any
		}{{0, noop, nil}})
		if _, err := p.Execute(context.Background(), items); err != nil {
			t.Fatalf("batch %d: %v", i, err)
		}
	}
}

func TestExecuteSingleWorkerHandlesLargeBatch(t *testing.T) {
	p := CreatePool(1)
	defer p.Shutdown()

	inc := func(args ...any) (any, error) { return args[0].(int) + 1, nil }
	specs := make([]struct {
		key Key
		fn  task.Func
		arg any
	}, 50)
	for i := range specs {
		specs[i] = struct {
			key Key
			fn  task.Func
			arg any
		}{i, inc, i}
	}
	items := itemsWithKeys(t, specs)

	out, err := p.Execute(context.Background(), items)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for i, o := range out {
		if o.Value.(int) != i+1 {
			t.Fatalf("slot %d = %v, want %d", i, o.Value, i+1)
		}
	}
}

func TestExecuteBatchTimeout(t *testing.T) {
	config.Reset()
	config.SetMaxTaskTimeout(30 * time.Millisecond)
	defer config.Reset()

	p := CreatePool(1)
	defer p.Shutdown()

	slow := func(args ...any) (any, error) {
		time.Sleep(500 * time.Millisecond)
		return nil, nil
	}
	items := itemsWithKeys(t, []struct {
		key Key
		fn  task.Func
		arg any
	}{{0, slow, nil}})

	_, err := p.Execute(context.Background(), items)
	var timeoutErr *BatchTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *BatchTimeoutError, got %v", err)
	}
}

func TestShutdownIsIdempotentAndRejectsFurtherExecute(t *testing.T) {
	p := CreatePool(2)
	p.Shutdown()
	p.Shutdown() // must not panic or block

	_, err := p.Execute(context.Background(), []Item{{Key: 0}})
	if !errors.Is(err, ErrPoolShutdown) {
		t.Fatalf("expected ErrPoolShutdown, got %v", err)
	}
}

func TestIsHealthyAfterNormalUse(t *testing.T) {
	p := CreatePool(2)
	defer p.Shutdown()

	if !p.IsHealthy() {
		t.Fatal("expected a freshly created pool to be healthy")
	}

	noop := func(args ...any) (any, error) { return nil, nil }
	items := itemsWithKeys(t, []struct {
		key Key
		fn  task.Func
		arg any
	}{{0, noop, nil}})
	if _, err := p.Execute(context.Background(), items); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !p.IsHealthy() {
		t.Fatal("expected pool to remain healthy after a clean batch")
	}
}
