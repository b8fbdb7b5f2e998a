package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// IPRateLimiter hands out one token bucket per client IP. Idle buckets
// expire from the cache so the set of tracked IPs stays bounded.
type IPRateLimiter struct {
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

func NewIPRateLimiter(rps float64, burst int, idle time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: cache.New(idle, 2*idle),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

func (l *IPRateLimiter) limiter(ip string) *rate.Limiter {
	if v, found := l.limiters.Get(ip); found {
		limiter := v.(*rate.Limiter)
		// touch so an active client keeps its bucket
		l.limiters.SetDefault(ip, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(l.limit, l.burst)
	// Add fails if another request created the bucket first
	if err := l.limiters.Add(ip, limiter, cache.DefaultExpiration); err != nil {
		if v, found := l.limiters.Get(ip); found {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

func (l *IPRateLimiter) Allow(ip string) bool {
	return l.limiter(ip).Allow()
}

// RateLimit rejects requests over the per-IP budget with 429.
func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
