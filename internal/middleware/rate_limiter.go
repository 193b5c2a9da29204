package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"carenow-backend/internal/config"
	"carenow-backend/pkg/utils"
)

// visitorIdle is how long an IP's limiter survives without requests.
const visitorIdle = 3 * time.Minute

// IPRateLimiter keeps one token bucket per client IP. Idle buckets are
// evicted by the cache janitor.
type IPRateLimiter struct {
	visitors *cache.Cache
	r        rate.Limit
	b        int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: cache.New(visitorIdle, time.Minute),
		r:        r,
		b:        b,
	}
}

// GetLimiter returns the IP's limiter, creating it on first sight.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	if v, found := i.visitors.Get(ip); found {
		limiter := v.(*rate.Limiter)
		i.visitors.Set(ip, limiter, cache.DefaultExpiration)
		return limiter
	}
	limiter := rate.NewLimiter(i.r, i.b)
	if err := i.visitors.Add(ip, limiter, cache.DefaultExpiration); err != nil {
		// another request for this IP won the race
		if v, found := i.visitors.Get(ip); found {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

func RateLimitMiddleware(cfg config.RateLimitConfig) gin.HandlerFunc {
	limiter := NewIPRateLimiter(rate.Limit(cfg.RPS), cfg.Burst)

	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			utils.AbortResponse(c, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}
		c.Next()
	}
}
