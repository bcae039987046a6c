package netutil

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// UDPFloodGuard rate-limits UDP datagrams per sender address using a
// token-bucket per address. Idle buckets are reaped
// periodically so a churn of transient source addresses does not leak
// memory.
type UDPFloodGuard struct {
	packetsPerSecond rate.Limit
	burst            int
	maxAge           time.Duration

	mu       sync.Mutex
	limiters map[string]*floodEntry
}

type floodEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewUDPFloodGuard constructs a guard allowing packetsPerSecond sustained
// datagrams per address, with a matching burst. Entries idle longer than
// maxAge are removed by Reap.
func NewUDPFloodGuard(packetsPerSecond int, maxAge time.Duration) *UDPFloodGuard {
	return &UDPFloodGuard{
		packetsPerSecond: rate.Limit(packetsPerSecond),
		burst:            packetsPerSecond,
		maxAge:           maxAge,
		limiters:         make(map[string]*floodEntry),
	}
}

// Allow reports whether a datagram from addr may be processed now.
func (g *UDPFloodGuard) Allow(addr string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.limiters[addr]
	if !ok {
		entry = &floodEntry{limiter: rate.NewLimiter(g.packetsPerSecond, g.burst)}
		g.limiters[addr] = entry
	}
	entry.lastAccess = time.Now()
	return entry.limiter.Allow()
}

// Reap removes buckets that have been idle longer than maxAge. Intended to
// be called from a periodic ticker.
func (g *UDPFloodGuard) Reap() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	removed := 0
	for addr, entry := range g.limiters {
		if now.Sub(entry.lastAccess) > g.maxAge {
			delete(g.limiters, addr)
			removed++
		}
	}
	return removed
}

// Tracked returns the number of addresses currently tracked.
func (g *UDPFloodGuard) Tracked() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.limiters)
}

// RunReaper periodically calls Reap until stop is closed.
func (g *UDPFloodGuard) RunReaper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.Reap()
		case <-stop:
			return
		}
	}
}
