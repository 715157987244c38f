package cache

import (
	"context"
	"time"

	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/pkg/redis"
)

// RedisStore shares results across API replicas; Redis expires keys itself
type RedisStore struct {
	cache *redis.Cache
	ttl   time.Duration
}

// NewRedisStore creates a store on the "betafolio:cache:" namespace
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		cache: redis.NewCache(client, "betafolio"),
		ttl:   ttl,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*contracts.OptimizationResult, bool, error) {
	var result contracts.OptimizationResult
	found, err := s.cache.Get(ctx, key, &result)
	if err != nil || !found {
		return nil, false, err
	}
	return &result, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, result *contracts.OptimizationResult) error {
	return s.cache.Set(ctx, key, result, s.ttl)
}

func (s *RedisStore) Len(ctx context.Context) (int, error) {
	keys, err := s.cache.Keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *RedisStore) Clear(ctx context.Context) (int, error) {
	return s.cache.Flush(ctx)
}

// Purge is a no-op: keys carry their own TTL
func (s *RedisStore) Purge(_ context.Context) (int, error) {
	return 0, nil
}
