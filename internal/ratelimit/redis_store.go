package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces limiter keys in a shared Redis instance.
const redisKeyPrefix = "charana:login-fail:"

// RedisStore is a Store backed by a shared Redis instance, for deployments
// running more than one server process. Expiry is delegated to Redis TTLs,
// so Sweep is a no-op.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore over client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Increment adds one failure for key, refreshing the window TTL.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	full := redisKeyPrefix + key
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, full)
	pipe.Expire(ctx, full, window)
	if _, errExec := pipe.Exec(ctx); errExec != nil {
		return 0, fmt.Errorf("redis incr: %w", errExec)
	}
	return int(incr.Val()), nil
}

// Count returns the current failure count for key. Window expiry is already
// enforced by the key TTL, so the parameter is unused here.
func (s *RedisStore) Count(ctx context.Context, key string, window time.Duration) (int, error) {
	count, err := s.client.Get(ctx, redisKeyPrefix+key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get: %w", err)
	}
	return count, nil
}

// Clear removes the counter for key.
func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if errDel := s.client.Del(ctx, redisKeyPrefix+key).Err(); errDel != nil {
		return fmt.Errorf("redis del: %w", errDel)
	}
	return nil
}

// Sweep is a no-op; Redis expires counters via TTL.
func (s *RedisStore) Sweep(ctx context.Context, window time.Duration) (int, error) {
	return 0, nil
}
