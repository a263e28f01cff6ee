// ===========================================
// Package middleware - Rate Limiting
// ===========================================
// Applied before requests reach the resolution engine, so abusive
// clients cannot burn through click limits or brute-force passwords.
//
// ALGORITHM: sliding window counter over Redis.
// 1. Key = "ratelimit:{identifier}:{minute}"
// 2. INCR key -> current count
// 3. First hit sets a 60s expiry
// 4. Over the limit -> 429
// ===========================================

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/linkgate/internal/database"
	"github.com/user/linkgate/internal/models"
)

// RateLimiter is the middleware for rate limiting.
type RateLimiter struct {
	redis      *database.RedisDB
	limit      int
	windowSize time.Duration
}

// NewRateLimiter creates a new rate limiter middleware.
func NewRateLimiter(redis *database.RedisDB, requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		redis:      redis,
		limit:      requestsPerMinute,
		windowSize: time.Minute,
	}
}

// Middleware returns the Gin middleware handler.
// Authenticated requests are counted per user; anonymous ones per IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := rl.clientIdentifier(c)

		window := time.Now().Truncate(rl.windowSize)
		key := database.RateLimitKey(identifier, window)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rl.redis.IncrementRateLimit(ctx, key, rl.windowSize)
		if err != nil {
			// Redis down: fail open. Serving without a limiter beats
			// refusing every request.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", max(0, rl.limit-int(count))))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", window.Add(rl.windowSize).Unix()))

		if int(count) > rl.limit {
			retryAfter := rl.windowSize - time.Since(window)
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))

			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "Rate limit exceeded",
				Code:    models.ErrCodeRateLimited,
				Details: fmt.Sprintf("Try again in %d seconds", int(retryAfter.Seconds())),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// clientIdentifier picks the bucket key for this request.
// A verified user id beats the network address; otherwise trust the
// proxy-forwarded client IP when present.
func (rl *RateLimiter) clientIdentifier(c *gin.Context) string {
	if userID := GetUserID(c); userID != "" {
		return "user:" + userID
	}
	return "ip:" + ClientIP(c)
}

// ClientIP resolves the caller's address, preferring proxy headers.
// X-Forwarded-For can contain "client, proxy1, proxy2"; the first
// entry is the original client. Only meaningful behind a trusted proxy.
func ClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.ClientIP()
}
