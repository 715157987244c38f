package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/internal/engine"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

// sweepCmd represents the sweep command
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "목표 베타 구간 스윕",
	Long: `목표 베타 구간 [from, to]를 step 간격으로 병렬 최적화하고
구간별 달성 베타/기대 수익률을 표로 출력합니다.

병렬도는 ENGINE_WORKERS로 제한됩니다.

Example:
  go run ./cmd/betafolio sweep --from 0.6 --to 1.6 --step 0.2
  go run ./cmd/betafolio sweep --strategy top --count 5 --json`,
	RunE: runSweep,
}

var (
	sweepFrom     float64
	sweepTo       float64
	sweepStep     float64
	sweepCount    int
	sweepStrategy string
	sweepReturn   string
	sweepJSON     bool
)

func init() {
	rootCmd.AddCommand(sweepCmd)

	// Flags
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.6, "시작 베타")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1.6, "종료 베타")
	sweepCmd.Flags().Float64Var(&sweepStep, "step", 0.2, "베타 간격")
	sweepCmd.Flags().IntVar(&sweepCount, "count", contracts.DefaultCount, "종목 수")
	sweepCmd.Flags().StringVar(&sweepStrategy, "strategy", string(contracts.DefaultStrategy), "선택 전략")
	sweepCmd.Flags().StringVar(&sweepReturn, "return", "", "목표 수익률 (예: 12%)")
	sweepCmd.Flags().BoolVar(&sweepJSON, "json", false, "JSON 출력")
}

func runSweep(cmd *cobra.Command, args []string) error {
	strategy, err := contracts.ParseStrategy(sweepStrategy)
	if err != nil {
		PrintError(err.Error())
		return err
	}
	target, err := ParseReturnFlag(sweepReturn)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	cfg, err := loadConfig(appOptions{quiet: true})
	if err != nil {
		return err
	}
	eng, err := buildEngine(cfg, logger.New(cfg))
	if err != nil {
		return err
	}

	points, err := eng.Sweep(cmd.Context(), engine.SweepRequest{
		From:         sweepFrom,
		To:           sweepTo,
		Step:         sweepStep,
		Count:        sweepCount,
		Strategy:     strategy,
		TargetReturn: target,
	})
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if sweepJSON {
		return PrintJSON(points)
	}

	PrintHeader(fmt.Sprintf("Beta Sweep %.2f → %.2f (step %.2f, %s)", sweepFrom, sweepTo, sweepStep, strategy))
	widths := []int{8, 9, 7, 9, 7, 8, 9}
	PrintTableHeader([]string{"Target", "Achieved", "Δβ", "Return", "Sharpe", "Attempts", "Converged"}, widths)

	converged := 0
	for _, p := range points {
		res := p.Result
		if !res.SearchExhausted {
			converged++
		}
		PrintTableRow([]string{
			fmt.Sprintf("%.2f", p.TargetBeta),
			fmt.Sprintf("%.3f", res.AchievedBeta),
			fmt.Sprintf("%+.3f", res.AchievedBeta-p.TargetBeta),
			FormatPercent(res.AchievedReturn),
			fmt.Sprintf("%.3f", res.SharpeRatio),
			fmt.Sprintf("%d", res.Attempts),
			FormatBool(!res.SearchExhausted),
		}, widths)
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("%d/%d grid points converged", converged, len(points)))
	return nil
}
