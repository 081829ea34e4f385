package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiters hands out one token bucket per client IP.
type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func (cl *clientLimiters) get(ip string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	limiter, ok := cl.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(cl.limit, cl.burst)
		cl.limiters[ip] = limiter
	}
	return limiter
}

// RateLimiter throttles each client IP independently. ipHeader, when
// non-empty, names a trusted proxy header to take the client IP from
// instead of the connection address.
func RateLimiter(limit rate.Limit, burst int, ipHeader string) gin.HandlerFunc {
	cl := &clientLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}

	return func(c *gin.Context) {
		ip := ""
		if ipHeader != "" {
			ip = c.GetHeader(ipHeader)
		}
		if ip == "" {
			ip = c.ClientIP()
		}

		if !cl.get(ip).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
