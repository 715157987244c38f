package engine

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/betafolio/backend/internal/contracts"
)

// MaxSweepPoints bounds one sweep
const MaxSweepPoints = 200

// SweepRequest runs one optimization per target beta in [From, To] by Step
type SweepRequest struct {
	From         float64
	To           float64
	Step         float64
	Count        int
	Strategy     contracts.Strategy
	TargetReturn *float64
}

// SweepPoint is one grid point of a sweep
type SweepPoint struct {
	TargetBeta float64                       `json:"target_beta"`
	Result     *contracts.OptimizationResult `json:"result"`
}

// Betas returns the target beta grid, rounded to 4 decimals
func (r SweepRequest) Betas() ([]float64, error) {
	for _, f := range []struct {
		name string
		v    float64
	}{{"from", r.From}, {"to", r.To}, {"step", r.Step}} {
		if !contracts.Finite(f.v) {
			return nil, &contracts.ParameterError{Field: f.name, Message: "must be a finite number"}
		}
	}
	if r.Step <= 0 {
		return nil, &contracts.ParameterError{Field: "step", Message: "must be > 0"}
	}
	if r.From > r.To {
		return nil, &contracts.ParameterError{Field: "from", Message: "must be <= to"}
	}

	// int 변환 전에 float로 상한 검사 (작은 step → +Inf)
	points := math.Floor((r.To-r.From)/r.Step+1e-9) + 1
	if math.IsInf(points, 0) || points > MaxSweepPoints {
		return nil, &contracts.ParameterError{Field: "step", Message: fmt.Sprintf("grid exceeds %d points", MaxSweepPoints)}
	}

	betas := make([]float64, int(points))
	for i := range betas {
		betas[i] = contracts.Round(r.From+float64(i)*r.Step, 4)
	}
	return betas, nil
}

// Sweep optimizes every grid point in parallel, bounded by the worker pool.
// Points are returned in grid order; the first failure cancels the rest.
func (e *Engine) Sweep(ctx context.Context, req SweepRequest) ([]SweepPoint, error) {
	betas, err := req.Betas()
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, len(betas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, beta := range betas {
		g.Go(func() error {
			res, err := e.Optimize(gctx, contracts.OptimizationRequest{
				Count:        req.Count,
				TargetBeta:   beta,
				TargetReturn: req.TargetReturn,
				Strategy:     req.Strategy,
			})
			if err != nil {
				return fmt.Errorf("beta %.4f: %w", beta, err)
			}
			points[i] = SweepPoint{TargetBeta: beta, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.WithFields(map[string]interface{}{
		"points":   len(points),
		"from":     req.From,
		"to":       req.To,
		"strategy": req.Strategy,
	}).Info("Sweep completed")

	return points, nil
}
