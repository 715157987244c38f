package contracts

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Accepted request ranges
const (
	MinCount        = 1
	MaxCount        = 50
	DefaultCount    = 10
	MinTargetBeta   = 0.1
	MaxTargetBeta   = 3.0
	DefaultBeta     = 1.0
	MinTargetReturn = 0.01
	MaxTargetReturn = 0.50
)

// Reported precision of achieved_beta and expected_return
const (
	BetaDecimals   = 3
	ReturnDecimals = 4
)

// OptimizationRequest is one user request for a synthetic portfolio
type OptimizationRequest struct {
	Count        int      `json:"num_stocks"`
	TargetBeta   float64  `json:"target_beta"`
	TargetReturn *float64 `json:"target_return,omitempty"`
	Strategy     Strategy `json:"strategy"`
}

// Validate checks the request against the accepted ranges.
// Count is not checked for strategies that ignore it.
func (r OptimizationRequest) Validate() error {
	if !r.Strategy.Valid() {
		return &ParameterError{Field: "strategy", Message: fmt.Sprintf("unknown strategy %q", r.Strategy), Err: ErrUnknownStrategy}
	}

	if r.Strategy == StrategyTargetReturn && r.TargetReturn == nil {
		return &ParameterError{Field: "target_return", Message: "required for target_return strategy", Err: ErrTargetReturnRequired}
	}

	if !r.Strategy.IgnoresCount() && (r.Count < MinCount || r.Count > MaxCount) {
		return &ParameterError{Field: "num_stocks", Message: fmt.Sprintf("must be between %d and %d", MinCount, MaxCount)}
	}

	// NaN은 범위 비교를 모두 통과하므로 먼저 거름
	if !Finite(r.TargetBeta) || r.TargetBeta < MinTargetBeta || r.TargetBeta > MaxTargetBeta {
		return &ParameterError{Field: "target_beta", Message: fmt.Sprintf("must be between %.1f and %.1f", MinTargetBeta, MaxTargetBeta)}
	}

	if r.TargetReturn != nil && (!Finite(*r.TargetReturn) || *r.TargetReturn < MinTargetReturn || *r.TargetReturn > MaxTargetReturn) {
		return &ParameterError{Field: "target_return", Message: "must be between 1% and 50%"}
	}

	return nil
}

// Key returns the memoization key; count is 0 when the strategy ignores it
func (r OptimizationRequest) Key() string {
	count := r.Count
	if r.Strategy.IgnoresCount() {
		count = 0
	}

	ret := "none"
	if r.TargetReturn != nil {
		ret = fmt.Sprintf("%g", *r.TargetReturn)
	}

	return fmt.Sprintf("%d_%g_%s_%s", count, r.TargetBeta, ret, r.Strategy)
}

// NormalizeTargetReturn treats values above 1 as percentages (12 → 0.12)
func NormalizeTargetReturn(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	return v
}

// Finite reports whether v is neither NaN nor ±Inf
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Round rounds half away from zero to the given decimals
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// OptimizationResult is the immutable outcome of one request
// ⭐ SSOT: 최적화 결과 계약 (API/CLI/캐시/히스토리 공용)
type OptimizationResult struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	Instruments []Instrument   `json:"stocks"`
	Weights     Weights        `json:"weights"`
	Returns     ReturnEstimate `json:"individual_returns"`

	TargetBeta     float64  `json:"target_beta"`
	AchievedBeta   float64  `json:"achieved_beta"`
	TargetReturn   *float64 `json:"target_return"`
	AchievedReturn float64  `json:"expected_return"`
	Volatility     float64  `json:"volatility"`
	SharpeRatio    float64  `json:"sharpe_ratio"`

	TargetBetaAchieved   bool `json:"target_beta_achieved"`
	TargetReturnAchieved bool `json:"target_return_achieved"`

	StrategyUsed   Strategy `json:"strategy_used"`
	RequestedCount int      `json:"requested_count"`
	CountClamped   bool     `json:"count_clamped"`
	CountIgnored   bool     `json:"count_ignored"`

	Attempts         int     `json:"attempts"`
	SearchExhausted  bool    `json:"search_exhausted"`
	OptimizationTime float64 `json:"optimization_time"` // seconds

	DiagnosticMessage string `json:"message"`
}

// InstrumentCount returns the number of instruments in the portfolio
func (r *OptimizationResult) InstrumentCount() int {
	return len(r.Instruments)
}

// Optimizer runs one optimization request.
// The engine, the result cache and the history recorder all satisfy it.
type Optimizer interface {
	Optimize(ctx context.Context, req OptimizationRequest) (*OptimizationResult, error)
}
