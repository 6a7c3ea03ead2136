package server

import (
	"sync"
	"time"
)

// rateLimiter enforces a fixed-window event budget for one connection.
// State is per-connection and in-memory only; it is discarded on
// disconnect, so the guarantee is best-effort per server instance.
type rateLimiter struct {
	mu          sync.Mutex
	max         int
	window      time.Duration
	count       int
	windowStart time.Time
	now         func() time.Time
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Second
	}

	return &rateLimiter{
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// allow admits one unit of work. The counter resets once the window has
// elapsed since it was last reset.
func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if rl.windowStart.IsZero() || now.Sub(rl.windowStart) > rl.window {
		rl.windowStart = now
		rl.count = 0
	}

	if rl.count >= rl.max {
		return false
	}

	rl.count++
	return true
}
