package contracts

import (
	"fmt"
	"strings"
)

// Strategy selects how instruments are picked from the catalog
type Strategy string

const (
	StrategyDiversified  Strategy = "diversified"
	StrategyRandom       Strategy = "random"
	StrategyTop          Strategy = "top"
	StrategyTargetReturn Strategy = "target_return"
)

// DefaultStrategy is used when a request names none
const DefaultStrategy = StrategyDiversified

// Strategies lists every recognized strategy
func Strategies() []Strategy {
	return []Strategy{StrategyDiversified, StrategyRandom, StrategyTop, StrategyTargetReturn}
}

// ParseStrategy parses a strategy name; empty means DefaultStrategy
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	if s == "" {
		return DefaultStrategy, nil
	}
	if !s.Valid() {
		return "", &ParameterError{
			Field:   "strategy",
			Message: fmt.Sprintf("unknown strategy %q (expected diversified, random, top or target_return)", name),
			Err:     ErrUnknownStrategy,
		}
	}
	return s, nil
}

// Valid reports whether s is a recognized strategy
func (s Strategy) Valid() bool {
	switch s {
	case StrategyDiversified, StrategyRandom, StrategyTop, StrategyTargetReturn:
		return true
	}
	return false
}

// IgnoresCount reports whether the strategy always draws the full catalog
func (s Strategy) IgnoresCount() bool {
	return s == StrategyTargetReturn
}

func (s Strategy) String() string {
	return string(s)
}
