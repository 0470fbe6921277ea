package api

import (
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedCreators bounds the limiter map; idle buckets are swept past it.
const maxTrackedCreators = 10000

// creatorLimiter keeps one token bucket per creator so a busy writer only
// throttles itself.
type creatorLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newCreatorLimiter(limit rate.Limit, burst int) *creatorLimiter {
	return &creatorLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether creatorID may write now, consuming a token if so.
func (c *creatorLimiter) Allow(creatorID string) bool {
	c.mu.Lock()
	lim, ok := c.limiters[creatorID]
	if !ok {
		if len(c.limiters) >= maxTrackedCreators {
			c.sweep()
		}
		lim = rate.NewLimiter(c.limit, c.burst)
		c.limiters[creatorID] = lim
	}
	c.mu.Unlock()
	return lim.Allow()
}

// sweep drops buckets that have refilled; recreating them is equivalent.
// Callers hold mu.
func (c *creatorLimiter) sweep() {
	for id, lim := range c.limiters {
		if lim.Tokens() >= float64(c.burst) {
			delete(c.limiters, id)
		}
	}
}
