package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether another attempt for key is allowed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisLimiter is a fixed-window counter stored in redis
type RedisLimiter struct {
	client counter
	closer func() error
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter connects to url and allows limit attempts per window
func NewRedisLimiter(ctx context.Context, url string, limit int, window time.Duration) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisLimiter{
		client: client,
		closer: client.Close,
		prefix: "login",
		limit:  limit,
		window: window,
	}, nil
}

// Allow counts the attempt. On redis errors the attempt is allowed and
// the error returned so the caller can log it.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := fmt.Sprintf("%s:%s", l.prefix, key)
	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return true, fmt.Errorf("incr %s: %w", k, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return true, fmt.Errorf("expire %s: %w", k, err)
		}
	}
	return count <= int64(l.limit), nil
}

// Close releases the redis connection pool
func (l *RedisLimiter) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}

// Unlimited allows every attempt
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }
