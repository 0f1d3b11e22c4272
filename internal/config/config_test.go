package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	Reset()
	c := Get()
	if c.MaxTaskTimeout != 30*time.Second {
		t.Errorf("MaxTaskTimeout = %v, want 30s", c.MaxTaskTimeout)
	}
	if c.GCCheckInterval != 10 {
		t.Errorf("GCCheckInterval = %d, want 10", c.GCCheckInterval)
	}
}

func TestSettersAndReset(t *testing.T) {
	Reset()
	defer Reset()

	SetMaxTaskTimeout(time.Minute)
	SetDeadlockDetectionInterval(2 * time.Second)
	SetWorkerSleep(time.Millisecond)
	SetGCCheckInterval(5)
	SetMemoryThresholdForGC(1024)
	SetInitialPollSleep(50 * time.Microsecond)
	SetMaxPollSleep(time.Second)
	SetThenableTimeout(10 * time.Second)

	if MaxTaskTimeout() != time.Minute {
		t.Errorf("MaxTaskTimeout = %v", MaxTaskTimeout())
	}
	if GCCheckInterval() != 5 {
		t.Errorf("GCCheckInterval = %d", GCCheckInterval())
	}

	Reset()
	if MaxTaskTimeout() != 30*time.Second {
		t.Errorf("Reset did not restore default, got %v", MaxTaskTimeout())
	}
}

func TestUpdateIsAtomicUnderConcurrentReaders(t *testing.T) {
	Reset()
	defer Reset()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			SetGCCheckInterval(i)
		}
		close(done)
	}()
	for i := 0; i < 1000; i++ {
		_ = GCCheckInterval()
	}
	<-done
}
