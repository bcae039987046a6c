package netutil

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ConnLimiter enforces a global connection cap and a per-address cap
//. Counters are lock-free on the hot accept path; only
// the per-address map takes a mutex, and only on connect/disconnect.
type ConnLimiter struct {
	maxTotal      int64
	maxPerAddress int64

	total   atomic.Int64
	mu      sync.Mutex
	perAddr map[string]int64
}

// NewConnLimiter constructs a limiter with the given caps. A cap of 0
// means unlimited.
func NewConnLimiter(maxTotal, maxPerAddress int) *ConnLimiter {
	return &ConnLimiter{
		maxTotal:      int64(maxTotal),
		maxPerAddress: int64(maxPerAddress),
		perAddr:       make(map[string]int64),
	}
}

// Acquire admits a new connection from addr, or rejects it with an error
// if either cap would be exceeded. On success the caller must call
// Release(addr) exactly once when the connection closes.
func (l *ConnLimiter) Acquire(addr string) error {
	if l.maxTotal > 0 {
		if l.total.Add(1) > l.maxTotal {
			l.total.Add(-1)
			return fmt.Errorf("connection limit exceeded: max %d total connections", l.maxTotal)
		}
	} else {
		l.total.Add(1)
	}

	l.mu.Lock()
	count := l.perAddr[addr] + 1
	if l.maxPerAddress > 0 && count > l.maxPerAddress {
		l.mu.Unlock()
		l.total.Add(-1)
		return fmt.Errorf("connection limit exceeded: max %d connections from %s", l.maxPerAddress, addr)
	}
	l.perAddr[addr] = count
	l.mu.Unlock()

	return nil
}

// Release gives back one connection slot for addr.
func (l *ConnLimiter) Release(addr string) {
	l.total.Add(-1)

	l.mu.Lock()
	defer l.mu.Unlock()
	count := l.perAddr[addr] - 1
	if count <= 0 {
		delete(l.perAddr, addr)
		return
	}
	l.perAddr[addr] = count
}

// Total returns the current total connection count.
func (l *ConnLimiter) Total() int64 {
	return l.total.Load()
}

// PerAddress returns the current connection count for addr.
func (l *ConnLimiter) PerAddress(addr string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.perAddr[addr]
}
