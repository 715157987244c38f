package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/betafolio/backend/internal/catalog"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "종목 카탈로그 조회",
	Long: `투자 가능 종목 카탈로그를 출력합니다.

CATALOG_FILE (또는 --catalog) 미지정 시 내장 카탈로그를 사용합니다.

Example:
  go run ./cmd/betafolio catalog
  go run ./cmd/betafolio catalog --sector technology --limit 5`,
	RunE: runCatalog,
}

var (
	catalogSector string
	catalogLimit  int
	catalogJSON   bool
)

func init() {
	rootCmd.AddCommand(catalogCmd)

	// Flags
	catalogCmd.Flags().StringVar(&catalogSector, "sector", "", "섹터 필터 (대소문자 무시)")
	catalogCmd.Flags().IntVar(&catalogLimit, "limit", 0, "최대 개수 (0: 전체)")
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "JSON 출력")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(appOptions{quiet: true})
	if err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Engine.CatalogFile)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	stocks := cat.Filter(catalogSector, catalogLimit)
	if catalogJSON {
		return PrintJSON(map[string]interface{}{
			"stocks":  stocks,
			"total":   len(stocks),
			"sectors": cat.Sectors(),
		})
	}

	PrintHeader(fmt.Sprintf("Instrument Catalog (%d of %d)", len(stocks), cat.Len()))
	widths := []int{7, 26, 24, 5, 10}
	PrintTableHeader([]string{"Symbol", "Name", "Sector", "Beta", "Cap ($B)"}, widths)
	for _, s := range stocks {
		PrintTableRow([]string{
			s.Symbol,
			s.Name,
			s.Sector,
			fmt.Sprintf("%.2f", s.Beta),
			fmt.Sprintf("%.0f", s.MarketCap/1e9),
		}, widths)
	}

	lo, hi := cat.BetaRange()
	fmt.Println()
	PrintInfo(fmt.Sprintf("Beta range %.2f ~ %.2f", lo, hi))
	fmt.Println("Sectors:")
	PrintList(cat.Sectors())
	return nil
}
