package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/betafolio/backend/pkg/logger"
)

type flakyJob struct {
	name     string
	failures int32
	calls    atomic.Int32
}

func (j *flakyJob) Name() string     { return j.name }
func (j *flakyJob) Schedule() string { return "@every 1h" }
func (j *flakyJob) Run(context.Context) error {
	if j.calls.Add(1) <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(logger.NewNop())
	job := &flakyJob{name: "a"}

	require.NoError(t, s.AddJob(job))
	require.Error(t, s.AddJob(job), "duplicate job names must be rejected")
	require.NoError(t, s.AddJob(&flakyJob{name: "0-first"}))
	assert.Equal(t, []string{"0-first", "a"}, s.GetAllJobs())

	require.Error(t, s.AddJob(&badScheduleJob{}))
}

type badScheduleJob struct{}

func (badScheduleJob) Name() string              { return "bad" }
func (badScheduleJob) Schedule() string          { return "not a cron" }
func (badScheduleJob) Run(context.Context) error { return nil }

func TestScheduler_RunJobSync_Retries(t *testing.T) {
	s := New(logger.NewNop()).WithRetry(2, time.Millisecond)
	job := &flakyJob{name: "flaky", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync("flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), job.calls.Load())

	history, err := s.GetJobHistory("flaky")
	require.NoError(t, err)
	assert.Len(t, history.Results, 1)
	assert.Equal(t, 1.0, history.GetSuccessRate())
}

func TestScheduler_RunJobSync_Exhausted(t *testing.T) {
	s := New(logger.NewNop()).WithRetry(1, time.Millisecond)
	job := &flakyJob{name: "broken", failures: 10}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync("broken")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "transient", result.Error)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, int32(2), job.calls.Load())

	stats := s.GetJobStats()
	assert.Equal(t, 1, stats["broken"].FailureCount)
	assert.NotNil(t, stats["broken"].LastFailure)
}

func TestScheduler_RemoveJob(t *testing.T) {
	s := New(logger.NewNop())
	require.NoError(t, s.AddJob(&flakyJob{name: "gone"}))
	require.NoError(t, s.RemoveJob("gone"))
	require.Error(t, s.RemoveJob("gone"))

	_, err := s.RunJobSync("gone")
	require.Error(t, err)
	assert.Empty(t, s.GetJobStats())
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(logger.NewNop())
	require.NoError(t, s.AddJob(&flakyJob{name: "idle"}))
	s.Start()
	s.Stop()
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 120; i++ {
		h.AddResult(JobResult{JobName: "x", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, 100)
	assert.Len(t, h.GetLatestResults(5), 5)
	assert.Len(t, h.GetFailedResults(), 50)
	assert.Equal(t, 0.5, h.GetSuccessRate())
	assert.Empty(t, (&JobHistory{}).GetLatestResults(3))
}
