package cache

import (
	"context"
	"sync/atomic"

	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

// Stats is a point-in-time view of the result cache
type Stats struct {
	Size   int   `json:"cache_size"`
	Hits   int64 `json:"cache_hits"`
	Misses int64 `json:"cache_misses"`
}

// Memoizer caches results in front of an Optimizer, keyed by request parameters.
// Store failures degrade to a miss; only the wrapped optimizer can fail a request.
type Memoizer struct {
	next   contracts.Optimizer
	store  Store
	hits   atomic.Int64
	misses atomic.Int64
	logger *logger.Logger
}

// NewMemoizer wraps next with store
func NewMemoizer(next contracts.Optimizer, store Store, log *logger.Logger) *Memoizer {
	return &Memoizer{
		next:   next,
		store:  store,
		logger: log.WithComponent("cache"),
	}
}

func (m *Memoizer) Optimize(ctx context.Context, req contracts.OptimizationRequest) (*contracts.OptimizationResult, error) {
	key := req.Key()

	cached, found, err := m.store.Get(ctx, key)
	if err != nil {
		m.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
	}
	if found {
		m.hits.Add(1)
		m.logger.WithField("key", key).Debug("Cache hit")
		return cached, nil
	}
	m.misses.Add(1)

	result, err := m.next.Optimize(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := m.store.Set(ctx, key, result); err != nil {
		m.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}

	return result, nil
}

// Stats reports size and hit counters
func (m *Memoizer) Stats(ctx context.Context) (Stats, error) {
	size, err := m.store.Len(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Size:   size,
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}, nil
}

// Clear empties the store
func (m *Memoizer) Clear(ctx context.Context) (int, error) {
	n, err := m.store.Clear(ctx)
	if err != nil {
		return 0, err
	}
	m.logger.WithField("removed", n).Info("Cache cleared")
	return n, nil
}

// Purge drops expired entries
func (m *Memoizer) Purge(ctx context.Context) (int, error) {
	return m.store.Purge(ctx)
}
