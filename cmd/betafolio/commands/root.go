package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	engineConfig string
	catalogFile  string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "betafolio",
	Short: "Betafolio - 목표 베타/수익률 합성 포트폴리오 엔진",
	Long: `Betafolio Unified CLI

카탈로그에서 종목을 선택하고 Monte Carlo 탐색으로
목표 베타(및 선택적 목표 수익률)에 맞는 비중을 찾습니다.

Usage:
  go run ./cmd/betafolio [command]

Examples:
  go run ./cmd/betafolio api
  go run ./cmd/betafolio optimize --count 8 --beta 1.2
  go run ./cmd/betafolio optimize --strategy target_return --return 12%
  go run ./cmd/betafolio sweep --from 0.6 --to 1.6 --step 0.2
  go run ./cmd/betafolio catalog --sector Technology
  go run ./cmd/betafolio config check --file config/engine/default.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&engineConfig, "engine-config", "", "engine tuning YAML (overrides ENGINE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "instrument universe YAML (overrides CATALOG_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
