package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/betafolio/backend/internal/strategyconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "엔진 설정 관리",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "엔진 설정 YAML 검증",
	Long: `엔진 튜닝 YAML을 검증하고 설정 해시를 출력합니다.

알 수 없는 필드, 범위 밖 값은 실패로 처리되고
권장 범위를 벗어난 값은 경고로 출력됩니다.

Example:
  go run ./cmd/betafolio config check
  go run ./cmd/betafolio config check --file config/engine/default.yaml`,
	RunE: runConfigCheck,
}

var (
	configCheckFile string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)

	// Flags
	configCheckCmd.Flags().StringVar(&configCheckFile, "file", "", "검증할 YAML (기본값: ENGINE_CONFIG, 없으면 내장 기본값)")
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := configCheckFile
	if path == "" {
		cfg, err := loadConfig(appOptions{quiet: true})
		if err != nil {
			return err
		}
		path = cfg.Engine.ConfigFile
	}

	var tuning *strategyconfig.Config
	if path == "" {
		tuning = strategyconfig.Default()
		path = "(built-in defaults)"
	} else {
		loaded, _, err := strategyconfig.Load(path)
		if err != nil {
			var verr strategyconfig.ValidationError
			if errors.As(err, &verr) {
				PrintError(fmt.Sprintf("%s: %s", verr.Field, verr.Message))
			} else {
				PrintError(err.Error())
			}
			return err
		}
		tuning = loaded
	}

	hash, err := strategyconfig.Hash(tuning)
	if err != nil {
		return err
	}

	PrintHeader("Engine Config Check")
	PrintKeyValue("File", path, 12)
	PrintKeyValue("Engine ID", tuning.Meta.EngineID, 12)
	PrintKeyValue("Version", tuning.Meta.Version, 12)
	PrintKeyValue("Hash", hash, 12)
	PrintSeparator()

	warnings := strategyconfig.Warn(tuning)
	for _, w := range warnings {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	PrintSuccess(fmt.Sprintf("config valid (%d warnings)", len(warnings)))
	return nil
}
