package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/tair/commerce-core/pkg/logger"
)

const cacheKeyPrefix = "gateway:cache:"

// cacheRule marks a read route as cacheable. Only the anonymous read
// surface appears here: orders and warehouse documents are per-caller and
// always pass through.
type cacheRule struct {
	prefix string
	ttl    time.Duration
}

var cacheRules = []cacheRule{
	// the 24h by-type summary changes slowly and is already cached at the
	// service; the gateway copy saves the hop
	{prefix: "/api/inventory/summary", ttl: 5 * time.Minute},
	// catalog reads carry derived stock status, so the TTL stays short
	{prefix: "/api/products", ttl: time.Minute},
}

// ResponseCache caches catalog and summary reads in Redis and drops the
// whole read cache after any successful mutation, since every stock write
// changes the derived stock status the catalog reports.
func ResponseCache(redisClient *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil {
			return c.Next()
		}

		if mutating(c.Method()) {
			err := c.Next()
			if service, _ := ClassifyPath(c.Path()); service != "" && c.Response().StatusCode() < 400 {
				invalidateReadCache(redisClient)
			}
			return err
		}

		rule, cacheable := ruleFor(c.Path())
		if !cacheable {
			return c.Next()
		}

		key := cacheKey(c)
		ctx := context.Background()

		if cached, err := redisClient.Get(ctx, key).Bytes(); err == nil && len(cached) > 0 {
			c.Set("X-Cache", "HIT")
			c.Set("Content-Type", "application/json")
			return c.Send(cached)
		}

		err := c.Next()

		if c.Response().StatusCode() == fiber.StatusOK {
			body := c.Response().Body()
			if setErr := redisClient.Set(ctx, key, body, rule.ttl).Err(); setErr != nil {
				logger.Logger.Warn().Err(setErr).Str("key", key).Msg("Failed to cache response")
			}
			c.Set("X-Cache", "MISS")
		}

		return err
	}
}

func ruleFor(path string) (cacheRule, bool) {
	for _, rule := range cacheRules {
		if len(path) >= len(rule.prefix) && path[:len(rule.prefix)] == rule.prefix {
			return rule, true
		}
	}
	return cacheRule{}, false
}

// cacheKey keeps the path readable so invalidation can scan by prefix.
func cacheKey(c *fiber.Ctx) string {
	key := cacheKeyPrefix + c.Path()
	if query := string(c.Request().URI().QueryString()); query != "" {
		key += "?" + query
	}
	return key
}

func invalidateReadCache(redisClient *redis.Client) {
	ctx := context.Background()
	iter := redisClient.Scan(ctx, 0, cacheKeyPrefix+"*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Logger.Warn().Err(err).Msg("Cache invalidation scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := redisClient.Del(ctx, keys...).Err(); err != nil {
		logger.Logger.Warn().Err(err).Msg("Cache invalidation failed")
		return
	}
	logger.Logger.Debug().Int("count", len(keys)).Msg("Read cache invalidated after write")
}
