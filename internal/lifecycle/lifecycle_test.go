package lifecycle

import (
	"context"
	"testing"

	"github.com/concur-run/concur/internal/enginepool"
)

func TestDefaultPoolIsLazyAndStable(t *testing.T) {
	ShutdownDefaultPool()

	p1 := DefaultPool()
	p2 := DefaultPool()
	if p1 != p2 {
		t.Fatal("expected the same default pool instance across calls")
	}
	ShutdownDefaultPool()
}

func TestDefaultPoolIsRecreatedAfterShutdown(t *testing.T) {
	ShutdownDefaultPool()

	p1 := DefaultPool()
	p1.Shutdown()

	p2 := DefaultPool()
	if p1 == p2 {
		t.Fatal("expected a fresh pool after the previous one terminated")
	}
	if p2.State() == enginepool.StateTerminated {
		t.Fatal("fresh default pool should not be terminated")
	}
	ShutdownDefaultPool()
}

func TestDefaultPoolServesBatches(t *testing.T) {
	ShutdownDefaultPool()
	defer ShutdownDefaultPool()

	p := DefaultPool()
	out, err := p.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}
}
