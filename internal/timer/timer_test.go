package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAfterFires(t *testing.T) {
	s := New()
	var fired int32
	s.After(10, func() { atomic.StoreInt32(&fired, 1) })
	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 1 {
		t.Fatal("callback did not fire")
	}
}

func TestClearCancelsBeforeFire(t *testing.T) {
	s := New()
	var fired int32
	id := s.After(50, func() { atomic.StoreInt32(&fired, 1) })
	if !s.Clear(id) {
		t.Fatal("expected Clear to find the timer")
	}
	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatal("callback fired after Clear")
	}
}

func TestTickFiresRepeatedly(t *testing.T) {
	s := New()
	var count int32
	id := s.Tick(10, func() { atomic.AddInt32(&count, 1) })
	time.Sleep(55 * time.Millisecond)
	s.Clear(id)
	if atomic.LoadInt32(&count) < 2 {
		t.Fatalf("expected at least 2 ticks, got %d", count)
	}
}

func TestExistsAndClearAll(t *testing.T) {
	s := New()
	id := s.After(time.Minute.Milliseconds(), func() {})
	if !s.Exists(id) {
		t.Fatal("expected timer to exist")
	}
	s.ClearAll()
	if s.Exists(id) {
		t.Fatal("expected timer to be gone after ClearAll")
	}
}
