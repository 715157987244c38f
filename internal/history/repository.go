package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/betafolio/backend/internal/contracts"
)

// Schema creates the run log table
const Schema = `
	CREATE SCHEMA IF NOT EXISTS betafolio;

	CREATE TABLE IF NOT EXISTS betafolio.optimization_runs (
		run_id            UUID PRIMARY KEY,
		created_at        TIMESTAMPTZ NOT NULL,
		strategy          TEXT NOT NULL,
		requested_count   INTEGER NOT NULL,
		instrument_count  INTEGER NOT NULL,
		target_beta       DOUBLE PRECISION NOT NULL,
		achieved_beta     DOUBLE PRECISION NOT NULL,
		target_return     DOUBLE PRECISION,
		achieved_return   DOUBLE PRECISION NOT NULL,
		volatility        DOUBLE PRECISION NOT NULL,
		sharpe_ratio      DOUBLE PRECISION NOT NULL,
		beta_achieved     BOOLEAN NOT NULL,
		return_achieved   BOOLEAN NOT NULL,
		attempts          INTEGER NOT NULL,
		search_exhausted  BOOLEAN NOT NULL,
		optimization_time DOUBLE PRECISION NOT NULL,
		weights           JSONB NOT NULL,
		config_hash       TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_optimization_runs_created_at
		ON betafolio.optimization_runs (created_at DESC);
`

// Run is one persisted optimization
type Run struct {
	RunID            string            `json:"run_id"`
	CreatedAt        time.Time         `json:"created_at"`
	Strategy         string            `json:"strategy"`
	RequestedCount   int               `json:"requested_count"`
	InstrumentCount  int               `json:"instrument_count"`
	TargetBeta       float64           `json:"target_beta"`
	AchievedBeta     float64           `json:"achieved_beta"`
	TargetReturn     *float64          `json:"target_return"`
	AchievedReturn   float64           `json:"expected_return"`
	Volatility       float64           `json:"volatility"`
	SharpeRatio      float64           `json:"sharpe_ratio"`
	BetaAchieved     bool              `json:"target_beta_achieved"`
	ReturnAchieved   bool              `json:"target_return_achieved"`
	Attempts         int               `json:"attempts"`
	SearchExhausted  bool              `json:"search_exhausted"`
	OptimizationTime float64           `json:"optimization_time"`
	Weights          contracts.Weights `json:"weights"`
	ConfigHash       string            `json:"config_hash"`
}

// RunFromResult flattens a result into its log row
func RunFromResult(res *contracts.OptimizationResult, configHash string) Run {
	return Run{
		RunID:            res.RunID,
		CreatedAt:        res.CreatedAt,
		Strategy:         res.StrategyUsed.String(),
		RequestedCount:   res.RequestedCount,
		InstrumentCount:  res.InstrumentCount(),
		TargetBeta:       res.TargetBeta,
		AchievedBeta:     res.AchievedBeta,
		TargetReturn:     res.TargetReturn,
		AchievedReturn:   res.AchievedReturn,
		Volatility:       res.Volatility,
		SharpeRatio:      res.SharpeRatio,
		BetaAchieved:     res.TargetBetaAchieved,
		ReturnAchieved:   res.TargetReturnAchieved,
		Attempts:         res.Attempts,
		SearchExhausted:  res.SearchExhausted,
		OptimizationTime: res.OptimizationTime,
		Weights:          res.Weights,
		ConfigHash:       configHash,
	}
}

// Repository handles run log persistence
// ⭐ SSOT: 최적화 이력 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new history repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the table if missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to ensure history schema: %w", err)
	}
	return nil
}

// Save inserts one run; re-saving the same run id is a no-op
func (r *Repository) Save(ctx context.Context, run Run) error {
	weightsJSON, err := json.Marshal(run.Weights)
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}

	query := `
		INSERT INTO betafolio.optimization_runs (
			run_id, created_at, strategy, requested_count, instrument_count,
			target_beta, achieved_beta, target_return, achieved_return,
			volatility, sharpe_ratio, beta_achieved, return_achieved,
			attempts, search_exhausted, optimization_time, weights, config_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (run_id) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		run.RunID, run.CreatedAt, run.Strategy, run.RequestedCount, run.InstrumentCount,
		run.TargetBeta, run.AchievedBeta, run.TargetReturn, run.AchievedReturn,
		run.Volatility, run.SharpeRatio, run.BetaAchieved, run.ReturnAchieved,
		run.Attempts, run.SearchExhausted, run.OptimizationTime, weightsJSON, run.ConfigHash,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// Recent returns the latest runs, newest first
func (r *Repository) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT run_id::text, created_at, strategy, requested_count, instrument_count,
			target_beta, achieved_beta, target_return, achieved_return,
			volatility, sharpe_ratio, beta_achieved, return_achieved,
			attempts, search_exhausted, optimization_time, weights, config_hash
		FROM betafolio.optimization_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		var weightsJSON []byte

		err := rows.Scan(
			&run.RunID, &run.CreatedAt, &run.Strategy, &run.RequestedCount, &run.InstrumentCount,
			&run.TargetBeta, &run.AchievedBeta, &run.TargetReturn, &run.AchievedReturn,
			&run.Volatility, &run.SharpeRatio, &run.BetaAchieved, &run.ReturnAchieved,
			&run.Attempts, &run.SearchExhausted, &run.OptimizationTime, &weightsJSON, &run.ConfigHash,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if err := json.Unmarshal(weightsJSON, &run.Weights); err != nil {
			return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// PruneOlderThan deletes runs created before cutoff
func (r *Repository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM betafolio.optimization_runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
