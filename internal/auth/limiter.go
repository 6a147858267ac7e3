package auth

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"todoboard/internal/config"
)

const limiterIdleTTL = 5 * time.Minute

// RateLimiter keeps one token bucket per user. Buckets expire after being
// idle for limiterIdleTTL.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return newRateLimiter(cfg, limiterIdleTTL)
}

func newRateLimiter(cfg config.RateLimitConfig, idle time.Duration) *RateLimiter {
	perMin := cfg.PerMinute
	if perMin <= 0 {
		perMin = 300
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = max(perMin/10, 1)
	}
	return &RateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](10000, nil, idle),
		rate:     rate.Limit(float64(perMin) / 60.0),
		burst:    burst,
	}
}

// Allow reports whether the user may issue another request now.
func (rl *RateLimiter) Allow(userID string) bool {
	return rl.bucket(userID).Allow()
}

// bucket returns the user's limiter, creating it on first use. Re-adding an
// existing entry restarts its TTL, so only idle users lose their bucket.
func (rl *RateLimiter) bucket(userID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters.Get(userID)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
	}
	rl.limiters.Add(userID, limiter)
	return limiter
}
