package enginepool

import (
	"errors"
	"fmt"
	"time"
)

// ErrPoolShutdown is returned by Execute when called on a terminated pool.
var ErrPoolShutdown = errors.New("enginepool: pool is shut down")

// BatchTimeoutError reports that a batch exceeded the configured
// max-task-timeout before every slot settled.
type BatchTimeoutError struct {
	Elapsed time.Duration
	Pending int
}

func (e *BatchTimeoutError) Error() string {
	return fmt.Sprintf("enginepool: batch timed out after %v with %d slot(s) still pending", e.Elapsed, e.Pending)
}

// DeadlockError reports that no slot settled for longer than the
// configured deadlock-detection-interval.
type DeadlockError struct {
	Elapsed time.Duration
	Pending int
}

func (e *DeadlockError) Error() string {
	return fmt.Sprintf("enginepool: no progress for %v, %d slot(s) still pending (deadlock)", e.Elapsed, e.Pending)
}
