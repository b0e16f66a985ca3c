package signal

import (
	"sync"
	"time"

	"github.com/mapcollab/boardd/internal/core"
)

// CursorRateLimiter caps cursor relays per connection over a sliding
// window. Dropped frames are silent; cursors are best-effort anyway.
type CursorRateLimiter struct {
	mu       sync.Mutex
	history  map[core.ConnID][]time.Time
	limit    int
	interval time.Duration
}

func NewCursorRateLimiter(limit int, interval time.Duration) *CursorRateLimiter {
	return &CursorRateLimiter{
		history:  make(map[core.ConnID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *CursorRateLimiter) Allow(conn core.ConnID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[conn]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[conn] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[conn] = fresh
	return true
}

// Forget drops a connection's window once it is gone.
func (rl *CursorRateLimiter) Forget(conn core.ConnID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, conn)
}
