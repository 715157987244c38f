package history

import (
	"context"
	"time"

	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

// Saver persists runs; *Repository satisfies it
type Saver interface {
	Save(ctx context.Context, run Run) error
}

// saveTimeout bounds the log write added to each request
const saveTimeout = 2 * time.Second

// Recorder logs every computed result after the wrapped optimizer returns.
// A failed write is logged and never fails the request.
type Recorder struct {
	next       contracts.Optimizer
	saver      Saver
	configHash string
	logger     *logger.Logger
}

// NewRecorder wraps next with saver
func NewRecorder(next contracts.Optimizer, saver Saver, configHash string, log *logger.Logger) *Recorder {
	return &Recorder{
		next:       next,
		saver:      saver,
		configHash: configHash,
		logger:     log.WithComponent("history"),
	}
}

func (r *Recorder) Optimize(ctx context.Context, req contracts.OptimizationRequest) (*contracts.OptimizationResult, error) {
	result, err := r.next.Optimize(ctx, req)
	if err != nil {
		return nil, err
	}

	// 요청 취소와 무관하게 기록
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	if err := r.saver.Save(saveCtx, RunFromResult(result, r.configHash)); err != nil {
		r.logger.WithError(err).WithField("run_id", result.RunID).Warn("Failed to record run")
	}

	return result, nil
}
