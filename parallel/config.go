package parallel

import (
	"time"

	"github.com/concur-run/concur/internal/config"
)

// MaxTaskTimeout returns the upper bound on a whole batch's run time
// before Execute force-aborts it with a timeout error.
func MaxTaskTimeout() time.Duration { return config.MaxTaskTimeout() }

// SetMaxTaskTimeout updates MaxTaskTimeout process-wide.
func SetMaxTaskTimeout(d time.Duration) { config.SetMaxTaskTimeout(d) }

// DeadlockDetectionInterval returns how long a batch can go without any
// slot settling before it is declared deadlocked.
func DeadlockDetectionInterval() time.Duration { return config.DeadlockDetectionInterval() }

// SetDeadlockDetectionInterval updates DeadlockDetectionInterval
// process-wide.
func SetDeadlockDetectionInterval(d time.Duration) { config.SetDeadlockDetectionInterval(d) }

// WorkerSleep returns how long an idle worker polls before re-checking
// its queue and shutdown flag.
func WorkerSleep() time.Duration { return config.WorkerSleep() }

// SetWorkerSleep updates WorkerSleep process-wide.
func SetWorkerSleep(d time.Duration) { config.SetWorkerSleep(d) }

// GCCheckInterval returns how many completed tasks elapse between memory
// checks that may trigger an asynchronous GC hint.
func GCCheckInterval() int { return config.GCCheckInterval() }

// SetGCCheckInterval updates GCCheckInterval process-wide.
func SetGCCheckInterval(n int) { config.SetGCCheckInterval(n) }

// MemoryThresholdForGC returns the resident memory, in bytes, above which
// a GC check interval tick actually hints a garbage collection.
func MemoryThresholdForGC() uint64 { return config.MemoryThresholdForGC() }

// SetMemoryThresholdForGC updates MemoryThresholdForGC process-wide.
func SetMemoryThresholdForGC(b uint64) { config.SetMemoryThresholdForGC(b) }

// InitialPollSleep returns the starting backoff used by a promise's
// await loop.
func InitialPollSleep() time.Duration { return config.InitialPollSleep() }

// SetInitialPollSleep updates InitialPollSleep process-wide.
func SetInitialPollSleep(d time.Duration) { config.SetInitialPollSleep(d) }

// MaxPollSleep returns the cap on a promise await loop's exponential
// backoff.
func MaxPollSleep() time.Duration { return config.MaxPollSleep() }

// SetMaxPollSleep updates MaxPollSleep process-wide.
func SetMaxPollSleep(d time.Duration) { config.SetMaxPollSleep(d) }

// ThenableTimeout returns the maximum time a promise will wait for an
// external thenable to settle before treating it as rejected.
func ThenableTimeout() time.Duration { return config.ThenableTimeout() }

// SetThenableTimeout updates ThenableTimeout process-wide.
func SetThenableTimeout(d time.Duration) { config.SetThenableTimeout(d) }

// ResetConfig restores every tunable to its documented default, as if the
// process had just started.
func ResetConfig() { config.Reset() }
