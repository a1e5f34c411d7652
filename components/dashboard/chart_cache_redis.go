package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisChartPrefix = "rfm:chart:"

// RedisChartCache shares rendered chart HTML between dashboard replicas.
// Misses and Redis failures go through the fallback cache, or render
// directly without one; they never fail a panel.
type RedisChartCache struct {
	client    redis.UniversalClient
	ttl       time.Duration
	prefix    string
	timeout   time.Duration
	fallback  RenderCache
	telemetry Telemetry
}

// RedisChartCacheOption customizes the redis cache.
type RedisChartCacheOption func(*RedisChartCache)

// WithRedisKeyPrefix namespaces cache keys.
func WithRedisKeyPrefix(prefix string) RedisChartCacheOption {
	return func(c *RedisChartCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithRedisFallback renders misses and Redis failures through a local cache.
func WithRedisFallback(cache RenderCache) RedisChartCacheOption {
	return func(c *RedisChartCache) {
		c.fallback = cache
	}
}

// WithRedisTimeout bounds each Redis command.
func WithRedisTimeout(timeout time.Duration) RedisChartCacheOption {
	return func(c *RedisChartCache) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRedisTelemetry records cache errors.
func WithRedisTelemetry(t Telemetry) RedisChartCacheOption {
	return func(c *RedisChartCache) {
		c.telemetry = t
	}
}

// NewRedisChartCache wraps a redis client.
func NewRedisChartCache(client redis.UniversalClient, ttl time.Duration, opts ...RedisChartCacheOption) *RedisChartCache {
	c := &RedisChartCache{
		client:  client,
		ttl:     ttl,
		prefix:  defaultRedisChartPrefix,
		timeout: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.telemetry = normalizeTelemetry(c.telemetry)
	return c
}

// GetOrRender implements RenderCache.
func (c *RedisChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return c.renderLocal(key, render)
	}
	if cached, ok := c.get(key); ok {
		return cached, nil
	}
	html, err := c.renderLocal(key, render)
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

func (c *RedisChartCache) get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	cached, err := c.client.Get(ctx, c.prefix+key).Result()
	switch {
	case err == nil:
		return cached, true
	case !errors.Is(err, redis.Nil):
		c.recordError(ctx, "get", err)
	}
	return "", false
}

func (c *RedisChartCache) set(key, html string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.client.Set(ctx, c.prefix+key, html, c.ttl).Err(); err != nil {
		c.recordError(ctx, "set", err)
	}
}

func (c *RedisChartCache) renderLocal(key string, render func() (string, error)) (string, error) {
	if c == nil || c.fallback == nil {
		return render()
	}
	return c.fallback.GetOrRender(key, render)
}

func (c *RedisChartCache) recordError(ctx context.Context, op string, err error) {
	c.telemetry.Record(ctx, EventChartCacheError, map[string]any{
		"op":    op,
		"error": err.Error(),
	})
}
