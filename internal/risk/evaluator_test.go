package risk

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/internal/strategyconfig"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }
func (f fixedRand) Intn(int) int     { return 0 }

func defaultEvaluator() *Evaluator {
	return NewEvaluator(EvaluatorConfigFrom(strategyconfig.Default().Evaluation))
}

func twoStockInput(strategy contracts.Strategy, targetReturn *float64) Input {
	sel := contracts.Selection{
		Instruments: []contracts.Instrument{
			{Symbol: "AAA", Sector: "Technology", Beta: 1.2},
			{Symbol: "BBB", Sector: "Healthcare", Beta: 0.8},
		},
		Strategy:       strategy,
		RequestedCount: 2,
	}
	return Input{
		Selection:    sel,
		Weights:      contracts.Weights{"AAA": 0.6, "BBB": 0.4},
		Returns:      contracts.ReturnEstimate{"AAA": 0.13, "BBB": 0.07},
		TargetBeta:   1.0,
		TargetReturn: targetReturn,
	}
}

func TestEvaluate_Metrics(t *testing.T) {
	e := defaultEvaluator()
	res := e.Evaluate(twoStockInput(contracts.StrategyDiversified, nil), fixedRand(0.5))

	// beta = 0.6*1.2 + 0.4*0.8 = 1.04, return = 0.6*0.13 + 0.4*0.07 = 0.106
	assert.Equal(t, 1.04, res.AchievedBeta)
	assert.Equal(t, 0.106, res.AchievedReturn)
	assert.Equal(t, 0.25, res.Volatility)
	assert.Equal(t, 0.344, res.SharpeRatio) // (0.106-0.02)/0.25
	assert.True(t, res.TargetBetaAchieved)
	assert.False(t, res.TargetReturnAchieved, "no target return → false")
	assert.Nil(t, res.TargetReturn)
	assert.Equal(t, contracts.StrategyDiversified, res.StrategyUsed)
	assert.Equal(t, "Portfolio optimized with 2 stocks using diversified strategy!", res.DiagnosticMessage)
}

func TestEvaluate_VolatilityRange(t *testing.T) {
	e := defaultEvaluator()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		res := e.Evaluate(twoStockInput(contracts.StrategyTop, nil), rng)
		assert.GreaterOrEqual(t, res.Volatility, 0.15)
		assert.LessOrEqual(t, res.Volatility, 0.35)
	}
}

func TestEvaluate_TargetReturnFlags(t *testing.T) {
	e := defaultEvaluator()

	near := 0.11
	res := e.Evaluate(twoStockInput(contracts.StrategyTop, &near), fixedRand(0.5))
	assert.True(t, res.TargetReturnAchieved)
	assert.Contains(t, res.DiagnosticMessage, "Target return of 11.0% achieved with 10.60% expected return.")

	far := 0.45
	res = e.Evaluate(twoStockInput(contracts.StrategyTargetReturn, &far), fixedRand(0.5))
	assert.False(t, res.TargetReturnAchieved)
	assert.True(t, strings.HasPrefix(res.DiagnosticMessage, "Portfolio optimized using Target Return strategy with 2 stocks (count ignored)!"))
	assert.Contains(t, res.DiagnosticMessage, "closest feasible")
}

func TestEvaluate_BetaMiss(t *testing.T) {
	e := defaultEvaluator()
	in := twoStockInput(contracts.StrategyTop, nil)
	in.TargetBeta = 1.5

	res := e.Evaluate(in, fixedRand(0))
	assert.False(t, res.TargetBetaAchieved)
	assert.Equal(t, 0.15, res.Volatility)
}

func TestMessage_ClampNote(t *testing.T) {
	in := twoStockInput(contracts.StrategyTop, nil)
	in.Selection.RequestedCount = 40
	in.Selection.Clamped = true

	res := defaultEvaluator().Evaluate(in, fixedRand(0.5))
	require.True(t, res.CountClamped)
	assert.Contains(t, res.DiagnosticMessage, "Requested 40 stocks; selection limited to 2.")
}

func TestEvaluate_FlagsFollowReportedBeta(t *testing.T) {
	in := twoStockInput(contracts.StrategyTop, nil)
	// raw beta = 0.7499*1.2 + 0.2501*0.8 = 1.09996 → 1.1
	in.Weights = contracts.Weights{"AAA": 0.7499, "BBB": 0.2501}

	res := defaultEvaluator().Evaluate(in, fixedRand(0.5))
	assert.Equal(t, 1.1, res.AchievedBeta)
	assert.False(t, res.TargetBetaAchieved, "|1.1 - 1.0| is not < 0.1")
}

func TestSharpe_ZeroVolatility(t *testing.T) {
	assert.Equal(t, 0.0, defaultEvaluator().Sharpe(0.1, 0))
}
