package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"signet/internal/verification"
	"signet/pkg/platform/sentinel"
)

const defaultCacheTTL = 5 * time.Minute

// RedisCache holds the latest verification result per signature with a TTL so
// repeated reads skip the Postgres trail.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(signatureID string) string {
	return "verification:result:" + signatureID
}

func (c *RedisCache) Get(ctx context.Context, signatureID string) (*verification.Result, error) {
	raw, err := c.client.Get(ctx, cacheKey(signatureID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get cached result: %w", err)
	}

	var result verification.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	return &result, nil
}

func (c *RedisCache) Set(ctx context.Context, result *verification.Result) error {
	if result == nil {
		return sentinel.ErrInvalidState
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result for cache: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(result.SignatureID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache result: %w", err)
	}
	return nil
}
