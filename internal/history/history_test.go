package history

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/pkg/config"
	"github.com/wonny/betafolio/backend/pkg/database"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

type stubOptimizer struct {
	result *contracts.OptimizationResult
	err    error
}

func (s stubOptimizer) Optimize(context.Context, contracts.OptimizationRequest) (*contracts.OptimizationResult, error) {
	return s.result, s.err
}

type memorySaver struct {
	runs []Run
	err  error
}

func (m *memorySaver) Save(_ context.Context, run Run) error {
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, run)
	return nil
}

func sampleResult() *contracts.OptimizationResult {
	ret := 0.12
	return &contracts.OptimizationResult{
		RunID:                "5b8f7c1e-4a2d-4f0e-9a51-3c2d1e0f9a8b",
		CreatedAt:            time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		Instruments:          []contracts.Instrument{{Symbol: "AAPL"}, {Symbol: "JNJ"}},
		Weights:              contracts.Weights{"AAPL": 0.7, "JNJ": 0.3},
		TargetBeta:           1.0,
		AchievedBeta:         1.05,
		TargetReturn:         &ret,
		AchievedReturn:       0.1101,
		Volatility:           0.21,
		SharpeRatio:          0.429,
		TargetBetaAchieved:   true,
		TargetReturnAchieved: true,
		StrategyUsed:         contracts.StrategyTargetReturn,
		RequestedCount:       10,
		Attempts:             37,
		OptimizationTime:     0.002,
	}
}

func TestRunFromResult(t *testing.T) {
	run := RunFromResult(sampleResult(), "abc")

	assert.Equal(t, "target_return", run.Strategy)
	assert.Equal(t, 2, run.InstrumentCount)
	assert.Equal(t, 10, run.RequestedCount)
	assert.Equal(t, 0.12, *run.TargetReturn)
	assert.Equal(t, 37, run.Attempts)
	assert.Equal(t, "abc", run.ConfigHash)
	assert.Equal(t, 0.7, run.Weights["AAPL"])
}

func TestRecorder_SavesComputedRuns(t *testing.T) {
	saver := &memorySaver{}
	rec := NewRecorder(stubOptimizer{result: sampleResult()}, saver, "hash", logger.NewNop())

	res, err := rec.Optimize(context.Background(), contracts.OptimizationRequest{})
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, saver.runs, 1)
	assert.Equal(t, res.RunID, saver.runs[0].RunID)
}

func TestRecorder_SaveFailureDoesNotFailRequest(t *testing.T) {
	saver := &memorySaver{err: errors.New("db down")}
	rec := NewRecorder(stubOptimizer{result: sampleResult()}, saver, "hash", logger.NewNop())

	res, err := rec.Optimize(context.Background(), contracts.OptimizationRequest{})
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestRecorder_OptimizerErrorSkipsSave(t *testing.T) {
	saver := &memorySaver{}
	rec := NewRecorder(stubOptimizer{err: contracts.ErrInvalidParameter}, saver, "hash", logger.NewNop())

	_, err := rec.Optimize(context.Background(), contracts.OptimizationRequest{})
	assert.True(t, errors.Is(err, contracts.ErrInvalidParameter))
	assert.Empty(t, saver.runs)
}

func TestRepository_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := database.New(&config.Config{Database: config.DatabaseConfig{URL: url, MaxConns: 2, MinConns: 1}})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	repo := NewRepository(db.Pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	run := RunFromResult(sampleResult(), "hash")
	run.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.Save(ctx, run))
	require.NoError(t, repo.Save(ctx, run), "re-save must be idempotent")

	runs, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	assert.Equal(t, run.RunID, runs[0].RunID)
	assert.Equal(t, run.Weights, runs[0].Weights)

	_, err = repo.PruneOlderThan(ctx, run.CreatedAt.Add(time.Second))
	require.NoError(t, err)
}
