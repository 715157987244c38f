package portfolio

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/internal/strategyconfig"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

// OptimizerConfig defines the randomized simplex search
type OptimizerConfig struct {
	MaxAttempts       int       // 탐색 상한
	BetaTolerance     float64   // beta 단일 목적 조기 종료 기준
	CombinedTolerance float64   // beta+return 목적 조기 종료 기준
	ReturnTolerance   float64   // return 우선 목적: |Δr| 충족 기준
	MaxRedraws        int       // all-zero draw 재시도 횟수
	Exponents         []float64 // attempt i는 u^Exponents[i%len] 로 샘플링
	Objective         Objective
}

// Objective weights the two distances of the combined score
type Objective struct {
	BetaWeight   float64
	ReturnWeight float64
}

// OptimizerConfigFrom builds an OptimizerConfig from the engine tuning file
func OptimizerConfigFrom(cfg strategyconfig.Search) OptimizerConfig {
	return OptimizerConfig{
		MaxAttempts:       cfg.MaxAttempts,
		BetaTolerance:     cfg.BetaTolerance,
		CombinedTolerance: cfg.CombinedTolerance,
		ReturnTolerance:   cfg.ReturnTolerance,
		MaxRedraws:        cfg.MaxRedraws,
		Exponents:         cfg.Exponents,
		Objective: Objective{
			BetaWeight:   cfg.Objective.BetaWeight,
			ReturnWeight: cfg.Objective.ReturnWeight,
		},
	}
}

// Target is what one search tries to hit
type Target struct {
	Beta   float64
	Return *float64 // nil = beta 단일 목적

	// ReturnFirst ranks candidates by |Δr| until it is under ReturnTolerance,
	// then by |Δβ| among those that meet it. Requires Return.
	ReturnFirst bool
}

// SearchResult is the best assignment found and how the search ended
type SearchResult struct {
	Weights   contracts.Weights
	Attempts  int     // 실행된 attempt 수
	Score     float64 // best 후보의 gap (낮을수록 좋음)
	ReturnMet bool    // return 우선 목적에서 |Δr| 기준 충족
	Converged bool    // tolerance 미만 도달 (조기 종료)
	Fallback  bool    // 유효 후보 없음 → 균등 비중
}

// fit is how close one candidate lands: lower tier wins, then lower gap
type fit struct {
	tier int // return 우선 목적: 0 = |Δr| 충족, 1 = 미충족
	gap  float64
	beta float64
}

func (f fit) better(than fit) bool {
	if f.tier != than.tier {
		return f.tier < than.tier
	}
	return f.gap < than.gap
}

// Optimizer searches the weight simplex for a target beta (and return)
// ⭐ SSOT: 비중 탐색 로직은 여기서만
type Optimizer struct {
	config      OptimizerConfig
	constraints Constraints
	logger      *logger.Logger
}

// NewOptimizer creates a new weight optimizer
func NewOptimizer(config OptimizerConfig, constraints Constraints, logger *logger.Logger) *Optimizer {
	return &Optimizer{
		config:      config,
		constraints: constraints,
		logger:      logger,
	}
}

// Optimize runs the Monte Carlo search over sel.
// Ties keep the first candidate found. The returned weights always cover every
// selected symbol and sum to 1.
// Return-first targets start from a two-instrument mix that brackets the target return.
func (o *Optimizer) Optimize(sel contracts.Selection, est contracts.ReturnEstimate, target Target, rng contracts.Rand) SearchResult {
	n := sel.Len()
	if n == 0 {
		return SearchResult{Weights: contracts.Weights{}, Fallback: true}
	}

	// 단일 종목은 조정 불가
	if n == 1 {
		return SearchResult{
			Weights:   contracts.Weights{sel.Instruments[0].Symbol: 1.0},
			Converged: true,
		}
	}

	betas := sel.Betas()
	rets := est.Values(sel.Instruments)
	seeded := target.ReturnFirst && target.Return != nil

	var (
		best      []float64
		bestFit   = fit{tier: 1, gap: math.Inf(1)}
		attempts  int
		converged bool
		candidate = make([]float64, n)
	)

	for attempts < o.config.MaxAttempts {
		exp := o.exponent(attempts)
		attempts++

		if seeded && attempts == 1 {
			bracket(candidate, rets, *target.Return)
		} else if !o.draw(candidate, exp, rng) {
			continue
		}
		o.constraints.Apply(candidate)

		f := o.fit(candidate, betas, rets, target)
		if best == nil || f.better(bestFit) {
			bestFit = f
			if best == nil {
				best = make([]float64, n)
			}
			copy(best, candidate)
		}

		if o.converged(f, target) {
			converged = true
			break
		}
	}

	if best == nil {
		o.logger.WithField("attempts", attempts).Warn("No valid candidate found, using equal weights")
		return SearchResult{
			Weights:  contracts.EqualWeights(sel.Instruments),
			Attempts: attempts,
			Score:    bestFit.gap,
			Fallback: true,
		}
	}

	returnMet := seeded && bestFit.tier == 0
	if !converged {
		o.logger.WithFields(map[string]interface{}{
			"attempts":   attempts,
			"best_score": bestFit.gap,
			"return_met": returnMet,
		}).Debug("Search exhausted without meeting tolerance")
	}

	return SearchResult{
		Weights:   contracts.NewWeights(sel.Instruments, best),
		Attempts:  attempts,
		Score:     bestFit.gap,
		ReturnMet: returnMet,
		Converged: converged,
	}
}

func (o *Optimizer) exponent(attempt int) float64 {
	if len(o.config.Exponents) == 0 {
		return 1
	}
	return o.config.Exponents[attempt%len(o.config.Exponents)]
}

// draw fills w with one normalized simplex point.
// An all-zero draw is re-drawn up to MaxRedraws times; false means none succeeded.
func (o *Optimizer) draw(w []float64, exp float64, rng contracts.Rand) bool {
	for try := 0; try <= o.config.MaxRedraws; try++ {
		for i := range w {
			u := rng.Float64()
			if exp != 1 {
				u = math.Pow(u, exp)
			}
			w[i] = u
		}

		sum := floats.Sum(w)
		if sum > 0 && !math.IsInf(sum, 0) {
			floats.Scale(1/sum, w)
			return true
		}
	}
	return false
}

// bracket puts all weight on the two instruments whose returns straddle target
// most tightly, mixed to hit it. Outside the return range the nearest one takes it all.
func bracket(w, rets []float64, target float64) {
	lo, hi := -1, -1
	for i, r := range rets {
		if r <= target && (lo < 0 || r > rets[lo]) {
			lo = i
		}
		if r >= target && (hi < 0 || r < rets[hi]) {
			hi = i
		}
	}

	for i := range w {
		w[i] = 0
	}

	switch {
	case lo < 0:
		w[hi] = 1
	case hi < 0:
		w[lo] = 1
	case rets[hi]-rets[lo] <= 0:
		w[lo] = 1 // r == target
	default:
		share := (target - rets[lo]) / (rets[hi] - rets[lo])
		w[hi] = share
		w[lo] = 1 - share
	}
}

// fit scores w against target.
// Beta-only: |Δβ|. Return-first: tiered |Δr| then |Δβ|. Otherwise the weighted mean of both.
func (o *Optimizer) fit(w, betas, rets []float64, target Target) fit {
	beta := floats.Dot(w, betas)
	betaGap := math.Abs(beta - target.Beta)
	if target.Return == nil {
		return fit{gap: betaGap, beta: beta}
	}

	returnGap := math.Abs(floats.Dot(w, rets) - *target.Return)
	if target.ReturnFirst {
		if returnGap < o.config.ReturnTolerance {
			return fit{gap: betaGap, beta: beta}
		}
		return fit{tier: 1, gap: returnGap, beta: beta}
	}

	objective := o.config.Objective
	total := objective.BetaWeight + objective.ReturnWeight
	if total <= 0 {
		return fit{gap: (betaGap + returnGap) / 2, beta: beta}
	}
	return fit{gap: (objective.BetaWeight*betaGap + objective.ReturnWeight*returnGap) / total, beta: beta}
}

// converged reports whether f ends the search early.
// Beta checks also hold on the reported (rounded) beta so the achieved flag agrees.
func (o *Optimizer) converged(f fit, target Target) bool {
	switch {
	case target.Return == nil:
		return f.gap < o.config.BetaTolerance && o.reportedBetaWithin(f.beta, target.Beta)
	case target.ReturnFirst:
		return f.tier == 0 && f.gap < o.config.BetaTolerance && o.reportedBetaWithin(f.beta, target.Beta)
	default:
		return f.gap < o.config.CombinedTolerance
	}
}

func (o *Optimizer) reportedBetaWithin(beta, target float64) bool {
	return math.Abs(contracts.Round(beta, contracts.BetaDecimals)-target) < o.config.BetaTolerance
}
