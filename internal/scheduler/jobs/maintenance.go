package jobs

import (
	"context"
	"time"

	"github.com/wonny/betafolio/backend/pkg/logger"
)

// Purger drops expired entries; *cache.Memoizer and *api.LocalLimiter satisfy it
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// PurgeJob drops expired entries of an in-memory store
type PurgeJob struct {
	name     string
	schedule string
	target   Purger
	logger   *logger.Logger
}

// NewCachePurgeJob removes expired optimization results every minute
func NewCachePurgeJob(cache Purger, log *logger.Logger) *PurgeJob {
	return &PurgeJob{
		name:     "cache_purge",
		schedule: "0 * * * * *",
		target:   cache,
		logger:   log,
	}
}

// NewLimiterPurgeJob drops idle rate limit buckets every 5 minutes
func NewLimiterPurgeJob(limiter Purger, log *logger.Logger) *PurgeJob {
	return &PurgeJob{
		name:     "rate_limit_purge",
		schedule: "0 */5 * * * *",
		target:   limiter,
		logger:   log,
	}
}

// Name returns the job name
func (j *PurgeJob) Name() string {
	return j.name
}

// Schedule returns the cron schedule
func (j *PurgeJob) Schedule() string {
	return j.schedule
}

// Run executes the purge
func (j *PurgeJob) Run(ctx context.Context) error {
	j.logger.WithField("job", j.name).Debug("Starting scheduled purge")

	count, err := j.target.Purge(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		j.logger.WithFields(map[string]interface{}{
			"job":     j.name,
			"removed": count,
		}).Info("Purge completed")
	}

	return nil
}

// Pruner deletes old runs; *history.Repository satisfies it
type Pruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistoryRetentionJob deletes optimization runs older than the retention window
type HistoryRetentionJob struct {
	repo      Pruner
	retention time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

// NewHistoryRetentionJob creates a new history retention job
func NewHistoryRetentionJob(repo Pruner, retention time.Duration, log *logger.Logger) *HistoryRetentionJob {
	return &HistoryRetentionJob{
		repo:      repo,
		retention: retention,
		now:       time.Now,
		logger:    log,
	}
}

// Name returns the job name
func (j *HistoryRetentionJob) Name() string {
	return "history_retention"
}

// Schedule returns the cron schedule (daily at 03:30)
func (j *HistoryRetentionJob) Schedule() string {
	return "0 30 3 * * *"
}

// Run executes the retention cleanup
func (j *HistoryRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)

	deleted, err := j.repo.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"deleted": deleted,
		"cutoff":  cutoff.Format(time.RFC3339),
	}).Info("History retention completed")

	return nil
}
