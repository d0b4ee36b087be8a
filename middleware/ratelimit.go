package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariebrainware/patient-registry/util"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRateLimit  = 30
	defaultRateWindow = time.Minute
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// RateLimiter counts requests per client IP and endpoint in Redis.
// A nil client disables limiting, and a Redis failure lets the request through.
func RateLimiter(rdb *redis.Client, config RateLimitConfig, access *util.AccessLogger) gin.HandlerFunc {
	if config.Limit <= 0 {
		config.Limit = defaultRateLimit
	}
	if config.Window <= 0 {
		config.Window = defaultRateWindow
	}

	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		endpoint := c.Request.URL.Path
		key := rateLimitKey(clientIP, endpoint)

		allowed, err := checkRateLimit(c.Request.Context(), rdb, key, config.Limit, config.Window)
		if err != nil {
			access.Log(c.Request.Context(), util.AccessEvent{
				EventType: util.EventRateLimitCheckError,
				IP:        clientIP,
				Message:   fmt.Sprintf("Rate limit check failed: %v", err),
			})
			c.Next()
			return
		}

		if !allowed {
			access.LogRateLimitExceeded(c.Request.Context(), clientIP, endpoint)
			util.CallTooManyRequests(c, util.APIErrorParams{
				Msg: "Too many requests. Please try again later.",
				Err: fmt.Errorf("rate limit exceeded"),
			})
			return
		}

		c.Next()
	}
}

func rateLimitKey(clientIP, endpoint string) string {
	return fmt.Sprintf("ratelimit:%s:%s", endpoint, clientIP)
}

// checkRateLimit increments the counter for key and reports whether it is still within limit.
// EXPIRE NX is sent with every increment, so the window starts at the first request
// and a counter left without a TTL picks one up on the next call.
func checkRateLimit(ctx context.Context, rdb *redis.Client, key string, limit int, window time.Duration) (bool, error) {
	pipe := rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}
	return incrCmd.Val() <= int64(limit), nil
}

// ResetRateLimit clears the counter for a client and endpoint.
func ResetRateLimit(ctx context.Context, rdb *redis.Client, clientIP, endpoint string) error {
	if rdb == nil {
		return fmt.Errorf("redis not available")
	}
	return rdb.Del(ctx, rateLimitKey(clientIP, endpoint)).Err()
}
