package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/pkg/httputil"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

// optimizeCmd represents the optimize command
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "포트폴리오 1회 최적화",
	Long: `포트폴리오를 한 번 최적화하고 결과를 출력합니다.

기본은 로컬 엔진에서 실행하며, --remote 지정 시 실행 중인
API 서버의 /api/optimize를 호출합니다.

Strategies:
  diversified    - 섹터 라운드로빈 (기본값)
  random         - 무작위 선택
  top            - 카탈로그 상위 N개
  target_return  - 전체 카탈로그 + 수익률 목적 (count 무시, --return 필수)

Example:
  go run ./cmd/betafolio optimize --count 8 --beta 1.2
  go run ./cmd/betafolio optimize --strategy target_return --return 12% --json
  go run ./cmd/betafolio optimize --remote http://localhost:8089`,
	RunE: runOptimize,
}

var (
	optCount    int
	optBeta     float64
	optReturn   string
	optStrategy string
	optSeed     int64
	optRemote   string
	optJSON     bool
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	// Flags
	optimizeCmd.Flags().IntVar(&optCount, "count", contracts.DefaultCount, "종목 수")
	optimizeCmd.Flags().Float64Var(&optBeta, "beta", contracts.DefaultBeta, "목표 베타")
	optimizeCmd.Flags().StringVar(&optReturn, "return", "", "목표 수익률 (예: 12%, 0.12)")
	optimizeCmd.Flags().StringVar(&optStrategy, "strategy", string(contracts.DefaultStrategy), "선택 전략")
	optimizeCmd.Flags().Int64Var(&optSeed, "seed", 0, "난수 시드 (0: ENGINE_SEED 사용)")
	optimizeCmd.Flags().StringVar(&optRemote, "remote", "", "API 서버 URL (지정 시 원격 실행)")
	optimizeCmd.Flags().BoolVar(&optJSON, "json", false, "JSON 출력")
}

// buildRequest turns flags into a request
func buildRequest(count int, beta float64, ret, strategy string) (contracts.OptimizationRequest, error) {
	s, err := contracts.ParseStrategy(strategy)
	if err != nil {
		return contracts.OptimizationRequest{}, err
	}

	target, err := ParseReturnFlag(ret)
	if err != nil {
		return contracts.OptimizationRequest{}, err
	}

	return contracts.OptimizationRequest{
		Count:        count,
		TargetBeta:   beta,
		TargetReturn: target,
		Strategy:     s,
	}, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(optCount, optBeta, optReturn, optStrategy)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	var result *contracts.OptimizationResult
	if optRemote != "" {
		result, err = optimizeRemote(cmd.Context(), req)
	} else {
		result, err = optimizeLocal(cmd.Context(), req)
	}
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if optJSON {
		return PrintJSON(result)
	}
	PrintResult(result)
	return nil
}

func optimizeLocal(ctx context.Context, req contracts.OptimizationRequest) (*contracts.OptimizationResult, error) {
	cfg, err := loadConfig(appOptions{quiet: true})
	if err != nil {
		return nil, err
	}
	if optSeed != 0 {
		cfg.Engine.Seed = optSeed
	}
	cfg.Engine.CacheTTL = 0 // 1회 실행: 캐시 불필요

	eng, err := buildEngine(cfg, logger.New(cfg))
	if err != nil {
		return nil, err
	}

	return eng.Optimize(ctx, req)
}

func optimizeRemote(ctx context.Context, req contracts.OptimizationRequest) (*contracts.OptimizationResult, error) {
	cfg, err := loadConfig(appOptions{quiet: true})
	if err != nil {
		return nil, err
	}
	client := httputil.New(logger.New(cfg), 30*time.Second)

	// 서버는 target_return을 소수로 받음
	body := map[string]interface{}{
		"num_stocks":  req.Count,
		"target_beta": req.TargetBeta,
		"strategy":    req.Strategy,
	}
	if req.TargetReturn != nil {
		body["target_return"] = *req.TargetReturn
	}

	url := strings.TrimRight(optRemote, "/") + "/api/optimize"
	var result contracts.OptimizationResult
	if err := client.PostJSON(ctx, url, body, &result); err != nil {
		return nil, fmt.Errorf("remote optimize: %w", err)
	}
	return &result, nil
}
