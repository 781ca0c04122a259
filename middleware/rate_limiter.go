package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/annazecevic/catalog-service/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter gives every client a token bucket refilled at limit requests
// per window.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	limit    int
	window   time.Duration
	lastScan time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &RateLimiter{
		clients:  make(map[string]*client),
		limit:    limit,
		window:   window,
		lastScan: time.Now(),
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := c.ClientIP()
		if userID := c.GetString("user_id"); userID != "" {
			identifier = "user:" + userID
		}

		if !rl.allow(identifier, time.Now()) {
			logger.Security(logger.EventRateLimited, "Rate limit exceeded", logger.Fields(
				"client", identifier,
				"path", c.Request.URL.Path,
			))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(identifier string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.evictIdle(now)

	cl, ok := rl.clients[identifier]
	if !ok {
		every := rl.window / time.Duration(rl.limit)
		cl = &client{limiter: rate.NewLimiter(rate.Every(every), rl.limit)}
		rl.clients[identifier] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// evictIdle drops clients idle for a full window, at most once per window.
func (rl *RateLimiter) evictIdle(now time.Time) {
	if now.Sub(rl.lastScan) < rl.window {
		return
	}
	rl.lastScan = now
	for key, cl := range rl.clients {
		if now.Sub(cl.lastSeen) >= rl.window {
			delete(rl.clients, key)
		}
	}
}
