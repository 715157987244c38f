package engine

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/betafolio/backend/internal/catalog"
	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/internal/strategyconfig"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

func fiveSectorCatalog() *catalog.Catalog {
	return catalog.MustNew([]contracts.Instrument{
		{Symbol: "T1", Sector: "Technology", Beta: 1.3},
		{Symbol: "T2", Sector: "Technology", Beta: 1.5},
		{Symbol: "T3", Sector: "Technology", Beta: 2.1},
		{Symbol: "H1", Sector: "Healthcare", Beta: 0.7},
		{Symbol: "H2", Sector: "Healthcare", Beta: 0.8},
		{Symbol: "F1", Sector: "Financial Services", Beta: 1.0},
		{Symbol: "F2", Sector: "Financial Services", Beta: 1.1},
		{Symbol: "C1", Sector: "Consumer Staples", Beta: 0.9},
		{Symbol: "D1", Sector: "Consumer Discretionary", Beta: 1.4},
		{Symbol: "D2", Sector: "Consumer Discretionary", Beta: 1.8},
	})
}

func newTestEngine(t *testing.T, cat *catalog.Catalog, seed int64) *Engine {
	t.Helper()
	e, err := New(cat, strategyconfig.Default(), Config{Seed: seed, Workers: 4}, logger.NewNop())
	require.NoError(t, err)
	return e
}

func ptr(v float64) *float64 { return &v }

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, nil, Config{}, logger.NewNop())
	assert.True(t, errors.Is(err, catalog.ErrEmptyCatalog))

	bad := strategyconfig.Default()
	bad.Search.MaxAttempts = 0
	_, err = New(catalog.Default(), bad, Config{}, logger.NewNop())
	require.Error(t, err)

	e, err := New(catalog.Default(), nil, Config{Workers: 0}, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, e.Workers())
	assert.Len(t, e.ConfigHash(), 64)
}

func TestOptimize_DiversifiedCoversAllSectors(t *testing.T) {
	e := newTestEngine(t, fiveSectorCatalog(), 1)

	res, err := e.Optimize(context.Background(), contracts.OptimizationRequest{
		Count: 10, TargetBeta: 1.0, Strategy: contracts.StrategyDiversified,
	})
	require.NoError(t, err)

	sectors := make(map[string]bool)
	for _, inst := range res.Instruments {
		sectors[inst.Sector] = true
	}
	assert.Len(t, sectors, 5)
	assert.Equal(t, 10, res.InstrumentCount())
	assert.NotEmpty(t, res.RunID)
}

func TestOptimize_TargetBetaOne(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		e := newTestEngine(t, fiveSectorCatalog(), seed)

		res, err := e.Optimize(context.Background(), contracts.OptimizationRequest{
			Count: 10, TargetBeta: 1.0, Strategy: contracts.StrategyDiversified,
		})
		require.NoError(t, err)

		assert.GreaterOrEqual(t, res.AchievedBeta, 0.9, "seed=%d", seed)
		assert.LessOrEqual(t, res.AchievedBeta, 1.1, "seed=%d", seed)
		assert.True(t, res.TargetBetaAchieved)
		assert.False(t, res.SearchExhausted)
		assert.InDelta(t, 1.0, res.Weights.Sum(), 1e-6)
	}
}

func TestOptimize_TargetReturnStrategy(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		e := newTestEngine(t, catalog.Default(), seed)

		res, err := e.Optimize(context.Background(), contracts.OptimizationRequest{
			Count: 3, TargetBeta: 1.0, TargetReturn: ptr(0.12), Strategy: contracts.StrategyTargetReturn,
		})
		require.NoError(t, err)

		assert.True(t, res.TargetReturnAchieved, "seed=%d achieved=%.4f", seed, res.AchievedReturn)
		assert.True(t, res.CountIgnored)
		assert.Equal(t, 20, res.InstrumentCount(), "full catalog")
		assert.Contains(t, res.DiagnosticMessage, "count ignored")
		assert.Contains(t, res.DiagnosticMessage, "achieved")
	}
}

// 목표 beta가 수익률과 반대 방향이어도 달성 가능한 수익률은 항상 달성
func TestOptimize_TargetReturnAcrossBetas(t *testing.T) {
	feasible := 0
	for _, beta := range []float64{0.1, 0.5, 1.0, 1.5, 2.0, 3.0} {
		for _, tr := range []float64{0.06, 0.09, 0.12, 0.14} {
			for seed := int64(1); seed <= 5; seed++ {
				e := newTestEngine(t, catalog.Default(), seed)
				res, err := e.Optimize(context.Background(), contracts.OptimizationRequest{
					TargetBeta: beta, TargetReturn: ptr(tr), Strategy: contracts.StrategyTargetReturn,
				})
				require.NoError(t, err)

				lo, hi := 1.0, 0.0
				for _, r := range res.Returns {
					lo = min(lo, r)
					hi = max(hi, r)
				}
				if tr < lo || tr > hi {
					continue
				}
				feasible++
				assert.True(t, res.TargetReturnAchieved,
					"beta=%.1f tr=%.2f seed=%d achieved=%.4f", beta, tr, seed, res.AchievedReturn)
				assert.InDelta(t, tr, res.AchievedReturn, 0.011)
			}
		}
	}
	assert.Greater(t, feasible, 0)
}

func TestOptimize_InfeasibleTargetReturn(t *testing.T) {
	e := newTestEngine(t, catalog.Default(), 3)

	res, err := e.Optimize(context.Background(), contracts.OptimizationRequest{
		TargetBeta: 1.0, TargetReturn: ptr(0.45), Strategy: contracts.StrategyTargetReturn,
	})
	require.NoError(t, err)

	assert.False(t, res.TargetReturnAchieved)
	assert.True(t, res.SearchExhausted)
	assert.Equal(t, 1000, res.Attempts)
	assert.Contains(t, res.DiagnosticMessage, "closest feasible")
	assert.InDelta(t, 1.0, res.Weights.Sum(), 1e-6)
}

func TestOptimize_DeterministicWithSeed(t *testing.T) {
	e := newTestEngine(t, catalog.Default(), 42)
	req := contracts.OptimizationRequest{Count: 8, TargetBeta: 1.3, Strategy: contracts.StrategyRandom}

	a, err := e.Optimize(context.Background(), req)
	require.NoError(t, err)
	b, err := e.Optimize(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.Instruments, b.Instruments)
	assert.Equal(t, a.Returns, b.Returns)
	assert.Equal(t, a.Weights, b.Weights)
	assert.Equal(t, a.Volatility, b.Volatility)
	assert.Equal(t, a.Attempts, b.Attempts)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestOptimize_ConcurrentRequestsIndependent(t *testing.T) {
	e := newTestEngine(t, catalog.Default(), 7)
	req := contracts.OptimizationRequest{Count: 12, TargetBeta: 1.1, TargetReturn: ptr(0.1), Strategy: contracts.StrategyRandom}

	want, err := e.Optimize(context.Background(), req)
	require.NoError(t, err)

	const workers = 16
	results := make([]*contracts.OptimizationResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.Optimize(context.Background(), req)
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		require.NotNil(t, res, "request %d failed", i)
		assert.Equal(t, want.Weights, res.Weights, "request %d diverged", i)
		assert.Equal(t, want.Returns, res.Returns)
	}
}

func TestOptimize_Validation(t *testing.T) {
	e := newTestEngine(t, catalog.Default(), 1)

	tests := []struct {
		name string
		req  contracts.OptimizationRequest
		want error
	}{
		{"count", contracts.OptimizationRequest{Count: 0, TargetBeta: 1, Strategy: contracts.StrategyTop}, contracts.ErrInvalidParameter},
		{"beta", contracts.OptimizationRequest{Count: 5, TargetBeta: 4, Strategy: contracts.StrategyTop}, contracts.ErrInvalidParameter},
		{"strategy", contracts.OptimizationRequest{Count: 5, TargetBeta: 1, Strategy: "best"}, contracts.ErrUnknownStrategy},
		{"missing return", contracts.OptimizationRequest{TargetBeta: 1, Strategy: contracts.StrategyTargetReturn}, contracts.ErrTargetReturnRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Optimize(context.Background(), tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestOptimize_CanceledContext(t *testing.T) {
	e := newTestEngine(t, catalog.Default(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Optimize(ctx, contracts.OptimizationRequest{Count: 5, TargetBeta: 1, Strategy: contracts.StrategyTop})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOptimize_CountClamped(t *testing.T) {
	e := newTestEngine(t, fiveSectorCatalog(), 1)

	res, err := e.Optimize(context.Background(), contracts.OptimizationRequest{
		Count: 40, TargetBeta: 1.2, Strategy: contracts.StrategyTop,
	})
	require.NoError(t, err)

	assert.True(t, res.CountClamped)
	assert.Equal(t, 40, res.RequestedCount)
	assert.Equal(t, 10, res.InstrumentCount())
	assert.Contains(t, res.DiagnosticMessage, "Requested 40 stocks")
}

func TestOptimize_SingleInstrument(t *testing.T) {
	cat := catalog.MustNew([]contracts.Instrument{{Symbol: "SOLO", Sector: "Technology", Beta: 1.4}})
	e := newTestEngine(t, cat, 1)

	for _, beta := range []float64{0.5, 1.4, 2.5} {
		res, err := e.Optimize(context.Background(), contracts.OptimizationRequest{
			Count: 1, TargetBeta: beta, Strategy: contracts.StrategyDiversified,
		})
		require.NoError(t, err)
		assert.Equal(t, contracts.Weights{"SOLO": 1.0}, res.Weights)
		assert.Equal(t, 1.4, res.AchievedBeta)
	}
}

func TestRun_ClampsWithoutValidation(t *testing.T) {
	e := newTestEngine(t, fiveSectorCatalog(), 1)

	res, err := e.Run(contracts.OptimizationRequest{Count: -3, TargetBeta: 1, Strategy: contracts.StrategyTop}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 1, res.InstrumentCount())
	assert.True(t, res.CountClamped)

	a, err := e.Run(contracts.OptimizationRequest{Count: 6, TargetBeta: 1.2, Strategy: contracts.StrategyRandom}, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	b, err := e.Run(contracts.OptimizationRequest{Count: 6, TargetBeta: 1.2, Strategy: contracts.StrategyRandom}, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	assert.Equal(t, a.Weights, b.Weights)
}

func TestSweep(t *testing.T) {
	e := newTestEngine(t, catalog.Default(), 5)

	points, err := e.Sweep(context.Background(), SweepRequest{
		From: 0.8, To: 1.6, Step: 0.2, Count: 10, Strategy: contracts.StrategyDiversified,
	})
	require.NoError(t, err)
	require.Len(t, points, 5)

	for i, want := range []float64{0.8, 1.0, 1.2, 1.4, 1.6} {
		assert.Equal(t, want, points[i].TargetBeta)
		require.NotNil(t, points[i].Result)
		assert.Equal(t, want, points[i].Result.TargetBeta)
	}
}

func TestSweepRequest_Betas(t *testing.T) {
	_, err := SweepRequest{From: 1, To: 2, Step: 0}.Betas()
	assert.True(t, errors.Is(err, contracts.ErrInvalidParameter))

	_, err = SweepRequest{From: 2, To: 1, Step: 0.1}.Betas()
	assert.True(t, errors.Is(err, contracts.ErrInvalidParameter))

	_, err = SweepRequest{From: 0.1, To: 3, Step: 0.001}.Betas()
	assert.True(t, errors.Is(err, contracts.ErrInvalidParameter))

	betas, err := SweepRequest{From: 0.5, To: 1.0, Step: 0.1}.Betas()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.6, 0.7, 0.8, 0.9, 1.0}, betas)
}

func TestSweepRequest_BetasDegenerateGrid(t *testing.T) {
	tests := []struct {
		name string
		req  SweepRequest
	}{
		{"subnormal step", SweepRequest{From: 0.1, To: 3.0, Step: 1e-320}},
		{"nan from", SweepRequest{From: math.NaN(), To: 1, Step: 0.1}},
		{"inf to", SweepRequest{From: 0.1, To: math.Inf(1), Step: 0.1}},
		{"nan step", SweepRequest{From: 0.1, To: 1, Step: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			betas, err := tt.req.Betas()
			assert.Nil(t, betas)
			assert.True(t, errors.Is(err, contracts.ErrInvalidParameter), "got %v", err)
		})
	}
}

func TestSweep_InvalidPointFails(t *testing.T) {
	e := newTestEngine(t, catalog.Default(), 5)

	// 3.2는 허용 범위 밖
	_, err := e.Sweep(context.Background(), SweepRequest{
		From: 2.8, To: 3.2, Step: 0.2, Count: 5, Strategy: contracts.StrategyTop,
	})
	assert.True(t, errors.Is(err, contracts.ErrInvalidParameter))
}
