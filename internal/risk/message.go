package risk

import (
	"fmt"
	"strings"

	"github.com/wonny/betafolio/backend/internal/contracts"
)

// Message renders the human-readable summary of a result
func Message(r *contracts.OptimizationResult) string {
	var b strings.Builder

	n := r.InstrumentCount()
	if r.StrategyUsed == contracts.StrategyTargetReturn {
		fmt.Fprintf(&b, "Portfolio optimized using Target Return strategy with %d stocks (count ignored)!", n)
	} else {
		fmt.Fprintf(&b, "Portfolio optimized with %d stocks using %s strategy!", n, r.StrategyUsed)
	}

	if r.TargetReturn != nil {
		target := *r.TargetReturn * 100
		actual := r.AchievedReturn * 100
		switch {
		case r.TargetReturnAchieved && r.StrategyUsed == contracts.StrategyTargetReturn:
			fmt.Fprintf(&b, " Target return of %.1f%% achieved (expected: %.2f%%).", target, actual)
		case r.TargetReturnAchieved:
			fmt.Fprintf(&b, " Target return of %.1f%% achieved with %.2f%% expected return.", target, actual)
		default:
			fmt.Fprintf(&b, " Target return of %.1f%% not fully achievable. Best achievable: %.2f%% (closest feasible solution).", target, actual)
		}
	}

	if r.CountClamped {
		fmt.Fprintf(&b, " Requested %d stocks; selection limited to %d.", r.RequestedCount, n)
	}

	return b.String()
}
