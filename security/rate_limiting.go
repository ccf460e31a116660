package security

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// ScanRateLimit throttles token verification attempts per client IP. A bad
// actor cannot brute-force signatures through the scan station.
func (r *RateLimiter) ScanRateLimit(maxPerMinute int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			key := fmt.Sprintf("ratelimit:scan:%s", ip)

			count, err := r.redis.Incr(context.Background(), key).Result()
			if err == nil {
				if count == 1 {
					r.redis.Expire(context.Background(), key, time.Minute)
				}
				if count > maxPerMinute {
					return c.JSON(429, map[string]string{
						"error": "Too many verification attempts. Please try again later.",
					})
				}
			}

			return next(c)
		}
	}
}

// Attempts returns the verification attempts recorded for an IP in the
// current window.
func (r *RateLimiter) Attempts(ctx context.Context, ip string) (int64, error) {
	count, err := r.redis.Get(ctx, fmt.Sprintf("ratelimit:scan:%s", ip)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}
