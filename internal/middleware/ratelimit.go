package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for API rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	Enabled           bool
}

// DefaultRateLimitConfig returns default rate limit configuration.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: 10,
		Burst:             20,
		Enabled:           true,
	}
}

// RateLimiter applies a token bucket per client key: the authenticated
// trader when known, the client IP otherwise.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	enabled bool

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	return &RateLimiter{
		limit:   rate.Limit(config.RequestsPerSecond),
		burst:   config.Burst,
		enabled: config.Enabled,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Gin returns the gin middleware handler.
func (r *RateLimiter) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.enabled {
			c.Next()
			return
		}

		key := TraderID(c)
		if key == "" {
			key = c.ClientIP()
		}

		if !r.bucket(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) bucket(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if !ok {
		b = rate.NewLimiter(r.limit, r.burst)
		r.buckets[key] = b
	}
	return b
}
