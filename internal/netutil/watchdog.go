package netutil

import (
	"sync/atomic"
	"time"
)

// IdleWatchdog tracks the last activity time for a connection and reports
// whether it has gone idle past a deadline.
//
// lastActive is stored as UnixNano in an atomic so Touch can be called from
// the read goroutine without locking while the timeout-checking goroutine
// polls it concurrently.
type IdleWatchdog struct {
	timeout    time.Duration
	lastActive atomic.Int64
}

// NewIdleWatchdog starts a watchdog with the given idle timeout, marking
// the connection active now.
func NewIdleWatchdog(timeout time.Duration) *IdleWatchdog {
	w := &IdleWatchdog{timeout: timeout}
	w.Touch()
	return w
}

// Touch records activity now.
func (w *IdleWatchdog) Touch() {
	w.lastActive.Store(time.Now().UnixNano())
}

// Idle reports whether the connection has been silent longer than the
// configured timeout.
func (w *IdleWatchdog) Idle() bool {
	last := time.Unix(0, w.lastActive.Load())
	return time.Since(last) > w.timeout
}

// Run polls Idle every interval until either the connection goes idle (in
// which case onIdle is invoked and Run returns) or stop is closed.
func (w *IdleWatchdog) Run(interval time.Duration, stop <-chan struct{}, onIdle func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if w.Idle() {
				onIdle()
				return
			}
		case <-stop:
			return
		}
	}
}
