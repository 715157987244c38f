package risk

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/internal/strategyconfig"
)

// =============================================================================
// PortfolioEvaluator - 순수 집계기
// =============================================================================

// EvaluatorConfig holds the portfolio metric constants
type EvaluatorConfig struct {
	RiskFreeRate    float64
	VolatilityMin   float64 // 합성 변동성 하한
	VolatilityMax   float64 // 합성 변동성 상한
	BetaTolerance   float64 // |Δβ| < tol → target_beta_achieved
	ReturnTolerance float64 // |Δr| < tol → target_return_achieved
}

// EvaluatorConfigFrom builds an EvaluatorConfig from the engine tuning file
func EvaluatorConfigFrom(cfg strategyconfig.Evaluation) EvaluatorConfig {
	return EvaluatorConfig{
		RiskFreeRate:    cfg.RiskFreeRate,
		VolatilityMin:   cfg.VolatilityMin,
		VolatilityMax:   cfg.VolatilityMax,
		BetaTolerance:   cfg.BetaTolerance,
		ReturnTolerance: cfg.ReturnTolerance,
	}
}

// Input is everything one evaluation aggregates
type Input struct {
	Selection    contracts.Selection
	Weights      contracts.Weights
	Returns      contracts.ReturnEstimate
	TargetBeta   float64
	TargetReturn *float64
}

// Evaluator turns a weighted selection into portfolio metrics
// ⭐ SSOT: 포트폴리오 지표 산출/반올림 규칙은 여기서만
type Evaluator struct {
	config EvaluatorConfig
}

// NewEvaluator creates a new evaluator
func NewEvaluator(config EvaluatorConfig) *Evaluator {
	return &Evaluator{config: config}
}

// Evaluate aggregates in into a result. rng is drawn once, for volatility.
// Search bookkeeping (run id, attempts, timing) is left to the caller.
func (e *Evaluator) Evaluate(in Input, rng contracts.Rand) *contracts.OptimizationResult {
	w := in.Weights.Values(in.Selection.Instruments)

	// 달성 여부는 보고되는 (반올림된) 값으로 판정
	achievedBeta := contracts.Round(floats.Dot(w, in.Selection.Betas()), contracts.BetaDecimals)
	achievedReturn := contracts.Round(floats.Dot(w, in.Returns.Values(in.Selection.Instruments)), contracts.ReturnDecimals)
	volatility := contracts.Round(e.config.VolatilityMin+(e.config.VolatilityMax-e.config.VolatilityMin)*rng.Float64(), 4)

	result := &contracts.OptimizationResult{
		Instruments:    in.Selection.Instruments,
		Weights:        in.Weights,
		Returns:        in.Returns,
		TargetBeta:     in.TargetBeta,
		AchievedBeta:   achievedBeta,
		TargetReturn:   in.TargetReturn,
		AchievedReturn: achievedReturn,
		Volatility:     volatility,
		SharpeRatio:    e.Sharpe(achievedReturn, volatility),

		TargetBetaAchieved: math.Abs(achievedBeta-in.TargetBeta) < e.config.BetaTolerance,

		StrategyUsed:   in.Selection.Strategy,
		RequestedCount: in.Selection.RequestedCount,
		CountClamped:   in.Selection.Clamped,
		CountIgnored:   in.Selection.CountIgnored,
	}

	if in.TargetReturn != nil {
		result.TargetReturnAchieved = math.Abs(achievedReturn-*in.TargetReturn) < e.config.ReturnTolerance
	}

	result.DiagnosticMessage = Message(result)
	return result
}

// Sharpe returns (return - risk free) / volatility, rounded to 3 decimals
func (e *Evaluator) Sharpe(ret, volatility float64) float64 {
	if volatility <= 0 {
		return 0
	}
	return contracts.Round((ret-e.config.RiskFreeRate)/volatility, 3)
}
