package scheduler

import "time"

// JobStats summarizes a job's run log
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}

// GetJobStats returns statistics for all registered jobs
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats, len(s.jobs))
	for name, reg := range s.jobs {
		stats[name] = statsFor(reg)
	}
	return stats
}

func statsFor(reg *registration) JobStats {
	h := reg.history
	failures := len(h.GetFailedResults())

	st := JobStats{
		JobName:      reg.job.Name(),
		Schedule:     reg.job.Schedule(),
		TotalRuns:    len(h.Results),
		SuccessCount: len(h.Results) - failures,
		FailureCount: failures,
		SuccessRate:  h.GetSuccessRate(),
	}

	// LastSuccess/LastFailure는 가장 최근 실행 결과 기준
	if last, ok := h.last(); ok {
		started := last.StartTime
		st.LastRun = &started
		if last.Success {
			st.LastSuccess = &started
		} else {
			st.LastFailure = &started
		}
	}

	return st
}
