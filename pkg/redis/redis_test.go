package redis

import (
	"context"
	"testing"

	"github.com/wonny/betafolio/backend/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()

	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")

	cfg := OptimizeRateLimit.ForClient("127.0.0.1")
	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != OptimizeRateLimit.Limit {
		t.Errorf("Expected remaining = %d, got %d", OptimizeRateLimit.Limit, remaining)
	}
	if limiter.Enabled() {
		t.Error("Expected limiter to report disabled")
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	if err := cache.Set(ctx, "key", "value", TTLShort); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var result string
	found, err := cache.Get(ctx, "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}

	keys, err := cache.Keys(ctx)
	if err != nil || len(keys) != 0 {
		t.Errorf("Keys() = %v, %v; want empty", keys, err)
	}

	n, err := cache.Flush(ctx)
	if err != nil || n != 0 {
		t.Errorf("Flush() = %d, %v; want 0, nil", n, err)
	}
}

func TestForClient(t *testing.T) {
	cfg := OptimizeRateLimit.ForClient("10.0.0.1")
	if cfg.Key != "optimize:10.0.0.1" {
		t.Errorf("Key = %q, want optimize:10.0.0.1", cfg.Key)
	}
	if OptimizeRateLimit.Key != "optimize" {
		t.Error("ForClient must not mutate the base config")
	}
}
