package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/tair/commerce-core/pkg/logger"
)

// limitRule is a sliding-window budget for one class of traffic.
type limitRule struct {
	name   string
	limit  int
	window time.Duration
}

// Budgets per surface. Browsing the catalog is cheap; anything that can
// move stock or create documents gets the write budget; checkout gets its
// own, since a burst of order creations holds stock reservations.
var (
	readBudget     = limitRule{name: "read", limit: 300, window: time.Minute}
	writeBudget    = limitRule{name: "write", limit: 60, window: time.Minute}
	checkoutBudget = limitRule{name: "checkout", limit: 20, window: time.Minute}
)

// SurfaceRateLimiter rate-limits per caller and traffic class using a Redis
// sliding window. Keys use the authenticated user when present, the client
// IP otherwise, so an anonymous crawler cannot exhaust a customer's budget.
func SurfaceRateLimiter(redisClient *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		service, surface := ClassifyPath(c.Path())
		if service == "" {
			return c.Next()
		}

		rule := readBudget
		if mutating(c.Method()) {
			rule = writeBudget
			if surface == SurfaceOrders && c.Method() == fiber.MethodPost {
				rule = checkoutBudget
			}
		}

		identifier := c.IP()
		if userID := c.Locals("user_id"); userID != nil {
			identifier = fmt.Sprintf("user:%v", userID)
		}

		key := fmt.Sprintf("gateway:rl:%s:%s", rule.name, identifier)
		allowed, remaining, resetTime, err := slidingWindow(c.UserContext(), redisClient, key, rule)
		if err != nil {
			// limiter trouble never blocks traffic
			logger.Logger.Error().Err(err).Str("key", key).Msg("Rate limiter error")
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", rule.limit))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime.Unix()))

		if !allowed {
			logger.Logger.Warn().
				Str("identifier", identifier).
				Str("budget", rule.name).
				Str("surface", string(surface)).
				Msg("Rate limit exceeded")

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":     false,
				"error":       "Rate limit exceeded",
				"retry_after": time.Until(resetTime).Seconds(),
			})
		}

		return c.Next()
	}
}

// slidingWindow counts the caller's requests inside the window with a Redis
// sorted set keyed by timestamp.
func slidingWindow(ctx context.Context, redisClient *redis.Client, key string, rule limitRule) (bool, int, time.Time, error) {
	now := time.Now()
	windowStart := now.Add(-rule.window)

	pipe := redisClient.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, key, rule.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := countCmd.Val()
	remaining := rule.limit - int(count) - 1
	if remaining < 0 {
		remaining = 0
	}

	return count < int64(rule.limit), remaining, now.Add(rule.window), nil
}
