package config

import (
	"sync"
	"time"
)

// Config is the full set of process-wide tunables described in the data
// model. It initializes to the documented defaults on first read and can
// be mutated via the setters below or reset wholesale with Reset.
type Config struct {
	MaxTaskTimeout            time.Duration // upper bound for a whole batch before forced abort
	DeadlockDetectionInterval time.Duration // no-progress window before a batch is declared deadlocked
	WorkerSleep               time.Duration // poll backoff when waiting on a worker
	GCCheckInterval           int           // trigger a GC hint every N completed tasks
	MemoryThresholdForGC      uint64        // only hint GC if resident memory exceeds this, in bytes
	InitialPollSleep          time.Duration // starting backoff for promise await loop
	MaxPollSleep              time.Duration // cap on exponential await backoff
	ThenableTimeout           time.Duration // max wait for an external thenable to settle
}

func defaults() Config {
	return Config{
		MaxTaskTimeout:            30 * time.Second,
		DeadlockDetectionInterval: 5 * time.Second,
		WorkerSleep:               10 * time.Millisecond,
		GCCheckInterval:           10,
		MemoryThresholdForGC:      50 * 1024 * 1024,
		InitialPollSleep:          100 * time.Microsecond,
		MaxPollSleep:              10 * time.Millisecond,
		ThenableTimeout:           30 * time.Second,
	}
}

var (
	mu      sync.RWMutex
	current = defaults()
)

// Get returns a copy of the current configuration.
func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Update applies mutate to the current configuration in place while
// holding the write lock, so readers never observe a partial update. It
// is the primitive every individual setter below is built on.
func Update(mutate func(*Config)) {
	mu.Lock()
	defer mu.Unlock()
	mutate(&current)
}

// Reset restores every tunable to its documented default, as if the
// process had just started.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}

func MaxTaskTimeout() time.Duration { return Get().MaxTaskTimeout }
func SetMaxTaskTimeout(d time.Duration) {
	Update(func(c *Config) { c.MaxTaskTimeout = d })
}

func DeadlockDetectionInterval() time.Duration { return Get().DeadlockDetectionInterval }
func SetDeadlockDetectionInterval(d time.Duration) {
	Update(func(c *Config) { c.DeadlockDetectionInterval = d })
}

func WorkerSleep() time.Duration { return Get().WorkerSleep }
func SetWorkerSleep(d time.Duration) {
	Update(func(c *Config) { c.WorkerSleep = d })
}

func GCCheckInterval() int { return Get().GCCheckInterval }
func SetGCCheckInterval(n int) {
	Update(func(c *Config) { c.GCCheckInterval = n })
}

func MemoryThresholdForGC() uint64 { return Get().MemoryThresholdForGC }
func SetMemoryThresholdForGC(b uint64) {
	Update(func(c *Config) { c.MemoryThresholdForGC = b })
}

func InitialPollSleep() time.Duration { return Get().InitialPollSleep }
func SetInitialPollSleep(d time.Duration) {
	Update(func(c *Config) { c.InitialPollSleep = d })
}

func MaxPollSleep() time.Duration { return Get().MaxPollSleep }
func SetMaxPollSleep(d time.Duration) {
	Update(func(c *Config) { c.MaxPollSleep = d })
}

func ThenableTimeout() time.Duration { return Get().ThenableTimeout }
func SetThenableTimeout(d time.Duration) {
	Update(func(c *Config) { c.ThenableTimeout = d })
}
