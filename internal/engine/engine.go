package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/wonny/betafolio/backend/internal/catalog"
	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/internal/portfolio"
	"github.com/wonny/betafolio/backend/internal/returns"
	"github.com/wonny/betafolio/backend/internal/risk"
	"github.com/wonny/betafolio/backend/internal/selection"
	"github.com/wonny/betafolio/backend/internal/strategyconfig"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

// Config holds runtime settings of the engine
type Config struct {
	Seed    int64 // 0 = 요청마다 시간 기반 시드
	Workers int   // 동시 최적화 상한
}

// Engine coordinates Selector → ReturnEstimator → WeightOptimizer → PortfolioEvaluator
// ⭐ SSOT: 최적화 파이프라인 조율은 여기서만
type Engine struct {
	catalog   *catalog.Catalog
	selector  *selection.Selector
	estimator *returns.Estimator
	optimizer *portfolio.Optimizer
	evaluator *risk.Evaluator

	configHash string

	pool    *semaphore.Weighted
	workers int
	seed    int64
	seq     atomic.Int64
	now     func() time.Time

	logger *logger.Logger
}

// New wires the pipeline from the catalog and engine tuning
func New(cat *catalog.Catalog, tuning *strategyconfig.Config, cfg Config, log *logger.Logger) (*Engine, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, catalog.ErrEmptyCatalog
	}
	if tuning == nil {
		tuning = strategyconfig.Default()
	}
	if err := strategyconfig.Validate(tuning); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	hash, err := strategyconfig.Hash(tuning)
	if err != nil {
		return nil, fmt.Errorf("hash engine config: %w", err)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	log = log.WithComponent("engine")

	return &Engine{
		catalog:   cat,
		selector:  selection.NewSelector(log),
		estimator: returns.NewEstimator(returns.ConfigFrom(tuning.Returns)),
		optimizer: portfolio.NewOptimizer(
			portfolio.OptimizerConfigFrom(tuning.Search),
			portfolio.Constraints{MinWeight: tuning.Search.MinWeight},
			log,
		),
		evaluator:  risk.NewEvaluator(risk.EvaluatorConfigFrom(tuning.Evaluation)),
		configHash: hash,
		pool:       semaphore.NewWeighted(int64(workers)),
		workers:    workers,
		seed:       cfg.Seed,
		now:        time.Now,
		logger:     log,
	}, nil
}

// Catalog returns the read-only universe
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// ConfigHash returns the SHA-256 of the engine tuning
func (e *Engine) ConfigHash() string {
	return e.configHash
}

// Workers returns the worker pool size
func (e *Engine) Workers() int {
	return e.workers
}

// Optimize validates req, waits for a worker slot and runs the pipeline
// with a request-local random source.
func (e *Engine) Optimize(ctx context.Context, req contracts.OptimizationRequest) (*contracts.OptimizationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := e.pool.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire worker: %w", err)
	}
	defer e.pool.Release(1)

	return e.Run(req, e.newRand())
}

// Run executes one request on rng without validation; out-of-range counts are clamped.
// rng order: selector (random only) → estimator → optimizer → evaluator.
func (e *Engine) Run(req contracts.OptimizationRequest, rng contracts.Rand) (*contracts.OptimizationResult, error) {
	start := e.now()

	sel, err := e.selector.Select(e.catalog, req.Count, req.Strategy, rng)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	est := e.estimator.Estimate(sel, rng)

	// target_return 전략은 수익률 우선
	target := portfolio.Target{
		Beta:        req.TargetBeta,
		Return:      req.TargetReturn,
		ReturnFirst: req.Strategy == contracts.StrategyTargetReturn,
	}
	search := e.optimizer.Optimize(sel, est, target, rng)

	result := e.evaluator.Evaluate(risk.Input{
		Selection:    sel,
		Weights:      search.Weights,
		Returns:      est,
		TargetBeta:   req.TargetBeta,
		TargetReturn: req.TargetReturn,
	}, rng)

	now := e.now()
	result.RunID = uuid.NewString()
	result.CreatedAt = now
	result.Attempts = search.Attempts
	result.SearchExhausted = !search.Converged
	result.OptimizationTime = contracts.Round(now.Sub(start).Seconds(), 3)

	e.logger.WithFields(map[string]interface{}{
		"run_id":        result.RunID,
		"strategy":      req.Strategy,
		"count":         sel.Len(),
		"target_beta":   req.TargetBeta,
		"achieved_beta": result.AchievedBeta,
		"attempts":      search.Attempts,
		"return_met":    search.ReturnMet,
		"exhausted":     result.SearchExhausted,
		"duration_ms":   now.Sub(start).Milliseconds(),
	}).Info("Optimization completed")

	return result, nil
}

// newRand returns a fresh source per request; never shared between goroutines
func (e *Engine) newRand() *rand.Rand {
	if e.seed != 0 {
		return rand.New(rand.NewSource(e.seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano() + e.seq.Add(1)))
}
