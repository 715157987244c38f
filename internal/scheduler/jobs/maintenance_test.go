package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/betafolio/backend/pkg/logger"
)

type fakePurger struct {
	removed int
	err     error
}

func (f *fakePurger) Purge(context.Context) (int, error) { return f.removed, f.err }

type fakePruner struct {
	cutoff time.Time
}

func (f *fakePruner) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, nil
}

func TestCachePurgeJob(t *testing.T) {
	job := NewCachePurgeJob(&fakePurger{removed: 2}, logger.NewNop())
	assert.Equal(t, "cache_purge", job.Name())
	assert.Equal(t, "0 * * * * *", job.Schedule())
	require.NoError(t, job.Run(context.Background()))

	failing := NewCachePurgeJob(&fakePurger{err: errors.New("redis down")}, logger.NewNop())
	require.Error(t, failing.Run(context.Background()))
}

func TestLimiterPurgeJob(t *testing.T) {
	job := NewLimiterPurgeJob(&fakePurger{removed: 5}, logger.NewNop())
	assert.Equal(t, "rate_limit_purge", job.Name())
	assert.Equal(t, "0 */5 * * * *", job.Schedule())
	require.NoError(t, job.Run(context.Background()))
}

func TestHistoryRetentionJob(t *testing.T) {
	pruner := &fakePruner{}
	job := NewHistoryRetentionJob(pruner, 720*time.Hour, logger.NewNop())
	fixed := time.Date(2025, 3, 1, 3, 30, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, fixed.Add(-720*time.Hour), pruner.cutoff)
	assert.Equal(t, "history_retention", job.Name())
}
