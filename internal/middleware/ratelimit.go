package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dubflow/api/pkg/response"
)

// RateLimiter enforces fixed-window per-user limits with Redis counters.
// Counter keys are ratelimit:<bucket>:<userId> with the window as TTL.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

func (rl *RateLimiter) limit(bucket string, max int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			// Unauthenticated requests never get here; auth rejects them first.
			return c.Next()
		}

		ctx := c.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", bucket, userID)

		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			// Fail open when the counter store is unreachable.
			return c.Next()
		}
		if count == 1 {
			rl.redis.Expire(ctx, key, window)
		}

		if count > int64(max) {
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			c.Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(max-int(count)))
		return c.Next()
	}
}

// CaptionsLimit bounds caption generation per user per minute.
func (rl *RateLimiter) CaptionsLimit(maxPerMin int) fiber.Handler {
	return rl.limit("captions", maxPerMin, time.Minute)
}

// PipelineLimit bounds pipeline starts per user per hour.
func (rl *RateLimiter) PipelineLimit(maxPerHour int) fiber.Handler {
	return rl.limit("pipeline", maxPerHour, time.Hour)
}

// UploadLimit bounds video uploads per user per hour.
func (rl *RateLimiter) UploadLimit(maxPerHour int) fiber.Handler {
	return rl.limit("upload", maxPerHour, time.Hour)
}
