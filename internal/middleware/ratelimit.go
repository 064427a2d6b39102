package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// WindowLimiter allows limit hits per key within a sliding window.
type WindowLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
	calls  int
}

// Idle keys are pruned every sweepEvery calls to Allow.
const sweepEvery = 1024

func NewWindowLimiter(limit int, window time.Duration) *WindowLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &WindowLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records a hit for key. When the key is over its limit it returns false
// and how long until the oldest hit leaves the window.
func (l *WindowLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	cutoff := now.Add(-l.window)

	l.calls++
	if l.calls%sweepEvery == 0 {
		for k, times := range l.hits {
			if len(times) == 0 || !times[len(times)-1].After(cutoff) {
				delete(l.hits, k)
			}
		}
	}

	times := inWindow(l.hits[key], cutoff)
	if len(times) >= l.limit {
		l.hits[key] = times
		return false, times[0].Sub(cutoff)
	}
	l.hits[key] = append(times, now)
	return true, 0
}

// inWindow drops the leading hits at or before cutoff. times is in order.
func inWindow(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

func limitBy(l *WindowLimiter, key func(*gin.Context) string, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := l.Allow(key(c))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": message})
			return
		}
		c.Next()
	}
}

// RateLimit limits by client IP.
func RateLimit(l *WindowLimiter) gin.HandlerFunc {
	return limitBy(l, func(c *gin.Context) string { return "ip:" + c.ClientIP() }, "rate limit exceeded")
}

// RateLimitByUser limits an authenticated route per user (must be used after AuthRequired).
func RateLimitByUser(l *WindowLimiter) gin.HandlerFunc {
	return limitBy(l, func(c *gin.Context) string {
		return "user:" + strconv.FormatUint(uint64(GetUserID(c)), 10)
	}, "slow down, try again in a minute")
}
