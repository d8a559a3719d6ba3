package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/corstar/site-intake/pkg/logging"
)

var redisTracer = otel.Tracer("corstar.internal.ratelimit.redis")

// RedisLimiter shares the cool-down across instances with a TTL key per client.
type RedisLimiter struct {
	client *redis.Client
	window time.Duration
	prefix string
	logger *logging.Logger
}

// NewRedisLimiter creates a shared limiter.
func NewRedisLimiter(client *redis.Client, window time.Duration, logger *logging.Logger) *RedisLimiter {
	if client == nil {
		panic("ratelimit: redis client required")
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisLimiter{
		client: client,
		window: window,
		prefix: "ratelimit:intake:",
		logger: logger,
	}
}

// Scoped returns a limiter sharing the client whose keys live under namespace.
func (l *RedisLimiter) Scoped(namespace string) *RedisLimiter {
	cp := *l
	cp.prefix = l.prefix + namespace + ":"
	return &cp
}

// Allow sets the client's key only if absent. Redis errors fail open.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ctx, span := redisTracer.Start(ctx, "ratelimit.allow")
	defer span.End()

	ok, err := l.client.SetNX(ctx, l.prefix+key, 1, l.window).Result()
	if err != nil {
		l.logger.Error("rate limit check failed", "error", err)
		span.SetAttributes(attribute.Bool("ratelimit.unavailable", true))
		return true, fmt.Errorf("ratelimit: redis setnx: %w", err)
	}
	span.SetAttributes(attribute.Bool("ratelimit.allowed", ok))
	return ok, nil
}
