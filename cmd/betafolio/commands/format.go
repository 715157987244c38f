package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/wonny/betafolio/backend/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a formatted command header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// PrintJSON writes v as indented JSON to stdout
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatPercent renders a decimal as a percentage with two decimals
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// FormatBool renders achieved flags
func FormatBool(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

// ParseReturnFlag parses --return values: "12%", "12" or "0.12".
// Empty means no target.
func ParseReturnFlag(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	percent := strings.HasSuffix(raw, "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(raw, "%")), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid --return %q: %w", raw, err)
	}

	if percent {
		v /= 100
	} else {
		v = contracts.NormalizeTargetReturn(v)
	}
	return &v, nil
}

// holdingRows orders a result's holdings by weight, largest first
func holdingRows(res *contracts.OptimizationResult) [][]string {
	instruments := make([]contracts.Instrument, len(res.Instruments))
	copy(instruments, res.Instruments)
	sort.SliceStable(instruments, func(i, j int) bool {
		return res.Weights[instruments[i].Symbol] > res.Weights[instruments[j].Symbol]
	})

	rows := make([][]string, 0, len(instruments))
	for _, inst := range instruments {
		rows = append(rows, []string{
			inst.Symbol,
			inst.Sector,
			fmt.Sprintf("%.2f", inst.Beta),
			FormatPercent(res.Weights[inst.Symbol]),
			FormatPercent(res.Returns[inst.Symbol]),
		})
	}
	return rows
}

// PrintResult prints one optimization result
func PrintResult(res *contracts.OptimizationResult) {
	PrintHeader("Portfolio Optimization")
	PrintKeyValue("Run ID", res.RunID, 16)
	PrintKeyValue("Strategy", res.StrategyUsed.String(), 16)
	PrintKeyValue("Instruments", strconv.Itoa(res.InstrumentCount()), 16)
	PrintKeyValue("Target beta", fmt.Sprintf("%.2f", res.TargetBeta), 16)
	PrintKeyValue("Achieved beta", fmt.Sprintf("%.3f %s", res.AchievedBeta, FormatBool(res.TargetBetaAchieved)), 16)
	if res.TargetReturn != nil {
		PrintKeyValue("Target return", FormatPercent(*res.TargetReturn), 16)
		PrintKeyValue("Expected return", fmt.Sprintf("%s %s", FormatPercent(res.AchievedReturn), FormatBool(res.TargetReturnAchieved)), 16)
	} else {
		PrintKeyValue("Expected return", FormatPercent(res.AchievedReturn), 16)
	}
	PrintKeyValue("Volatility", FormatPercent(res.Volatility), 16)
	PrintKeyValue("Sharpe ratio", fmt.Sprintf("%.3f", res.SharpeRatio), 16)
	PrintKeyValue("Attempts", fmt.Sprintf("%d (exhausted: %t)", res.Attempts, res.SearchExhausted), 16)
	PrintKeyValue("Time", fmt.Sprintf("%.3fs", res.OptimizationTime), 16)
	PrintSeparator()

	widths := []int{8, 24, 6, 9, 9}
	PrintTableHeader([]string{"Symbol", "Sector", "Beta", "Weight", "Return"}, widths)
	for _, row := range holdingRows(res) {
		PrintTableRow(row, widths)
	}

	fmt.Println()
	if res.SearchExhausted {
		PrintWarning(res.DiagnosticMessage)
		return
	}
	PrintSuccess(res.DiagnosticMessage)
}
