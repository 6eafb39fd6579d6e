package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greetingsmith/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// CounterStore counts hits per key in fixed windows. cache.Store implements it
// with Redis or in process memory.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimitConfig configures RateLimit
type RateLimitConfig struct {
	Store  CounterStore
	Limit  int
	Window time.Duration
	// Scope separates budgets, e.g. "api" and "generation".
	Scope string
	// KeyFunc identifies the client; the client IP by default.
	KeyFunc func(*gin.Context) string
	Logger  *zap.Logger
}

// RateLimit rejects clients that exceed Limit requests per Window with 429.
// When the store is unreachable requests are let through.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Store == nil || cfg.Limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	limit := strconv.Itoa(cfg.Limit)

	return func(c *gin.Context) {
		key := cfg.Scope + ":" + cfg.KeyFunc(c)

		count, ttl, err := cfg.Store.Incr(c.Request.Context(), key, cfg.Window)
		if err != nil {
			cfg.Logger.Warn("Rate limit store unavailable", zap.String("scope", cfg.Scope), zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(cfg.Limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(cfg.Limit) {
			retryAfter := int(ttl.Round(time.Second).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
			return
		}

		c.Next()
	}
}
