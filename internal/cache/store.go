package cache

import (
	"context"

	"github.com/wonny/betafolio/backend/internal/contracts"
)

// Store keeps optimization results by request key
type Store interface {
	Get(ctx context.Context, key string) (*contracts.OptimizationResult, bool, error)
	Set(ctx context.Context, key string, result *contracts.OptimizationResult) error
	Len(ctx context.Context) (int, error)
	// Clear removes every entry and returns how many were removed
	Clear(ctx context.Context) (int, error)
	// Purge removes expired entries only
	Purge(ctx context.Context) (int, error)
}
