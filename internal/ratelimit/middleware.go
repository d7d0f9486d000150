package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"marketplace-console/internal/logging"
)

// PerClient keeps one RateLimiter per client key. Idle clients expire after a day.
type PerClient struct {
	perMinute, perHour, perDay int
	enabled                    bool
	clients                    *cache.Cache
	now                        func() time.Time
}

// NewPerClient creates a keyed limiter with the same limits for every client
func NewPerClient(perMinute, perHour, perDay int, enabled bool) *PerClient {
	return &PerClient{
		perMinute: perMinute,
		perHour:   perHour,
		perDay:    perDay,
		enabled:   enabled,
		clients:   cache.New(24*time.Hour, time.Hour),
		now:       time.Now,
	}
}

// Allow checks and records one request for key
func (p *PerClient) Allow(key string) (bool, time.Duration) {
	if !p.enabled {
		return true, 0
	}
	return p.limiter(key).Allow()
}

func (p *PerClient) limiter(key string) *RateLimiter {
	if v, ok := p.clients.Get(key); ok {
		p.clients.SetDefault(key, v)
		return v.(*RateLimiter)
	}
	rl := NewRateLimiter(p.perMinute, p.perHour, p.perDay, true)
	rl.now = p.now
	// Add fails when another request created it first
	if err := p.clients.Add(key, rl, cache.DefaultExpiration); err != nil {
		if v, ok := p.clients.Get(key); ok {
			return v.(*RateLimiter)
		}
	}
	return rl
}

// Clients returns the number of tracked clients
func (p *PerClient) Clients() int {
	return p.clients.ItemCount()
}

// Stats returns the statistics of one client
func (p *PerClient) Stats(key string) Stats {
	if !p.enabled {
		return Stats{Enabled: false}
	}
	if v, ok := p.clients.Get(key); ok {
		return v.(*RateLimiter).GetStats()
	}
	return NewRateLimiter(p.perMinute, p.perHour, p.perDay, true).GetStats()
}

// Middleware rejects requests over the client's limit with 429 and a Retry-After header
func Middleware(p *PerClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		ok, wait := p.Allow(key)
		if !ok {
			seconds := int(math.Ceil(wait.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			logging.Logger.Warnf("RateLimit: %s exceeded limit on %s %s", key, c.Request.Method, c.FullPath())
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": seconds,
			})
			return
		}
		c.Next()
	}
}
