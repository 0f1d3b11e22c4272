package lifecycle

import (
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/concur-run/concur/internal/enginepool"
)

var (
	mu          sync.Mutex
	defaultPool *enginepool.Pool
	hookOnce    sync.Once
)

// DefaultPool returns the process-wide pool, constructing it on first use
// and transparently replacing it if the previous instance was shut down
// or failed its health check.
func DefaultPool() *enginepool.Pool {
	mu.Lock()
	defer mu.Unlock()

	if defaultPool == nil || defaultPool.State() == enginepool.StateTerminated || !defaultPool.IsHealthy() {
		if defaultPool != nil {
			defaultPool.Shutdown()
		}
		defaultPool = enginepool.CreatePool(runtime.NumCPU())
		registerTerminationHandler()
	}
	return defaultPool
}

// ShutdownDefaultPool terminates the current default pool, if any. The
// next call to DefaultPool constructs a fresh one.
func ShutdownDefaultPool() {
	mu.Lock()
	p := defaultPool
	defaultPool = nil
	mu.Unlock()

	if p != nil {
		p.Shutdown()
	}
}

// registerTerminationHandler wires SIGTERM/SIGINT to a graceful shutdown
// of the default pool. It runs at most once per process.
func registerTerminationHandler() {
	hookOnce.Do(func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		go func() {
			<-sigCh
			ShutdownDefaultPool()
		}()
	})
}
