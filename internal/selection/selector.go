package selection

import (
	"fmt"

	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

// Universe is the read-only instrument source the selector draws from
type Universe interface {
	List() []contracts.Instrument
}

// Selector picks the per-request subset of the catalog
// ⭐ SSOT: 종목 선택 전략 로직은 여기서만
type Selector struct {
	logger *logger.Logger
}

// NewSelector creates a new selector
func NewSelector(logger *logger.Logger) *Selector {
	return &Selector{
		logger: logger,
	}
}

// Select draws count instruments using strategy.
// count is clamped to [1, len(universe)] and the clamp is recorded on the Selection.
// rng is consumed only by the random strategy.
func (s *Selector) Select(universe Universe, count int, strategy contracts.Strategy, rng contracts.Rand) (contracts.Selection, error) {
	if !strategy.Valid() {
		return contracts.Selection{}, &contracts.ParameterError{
			Field:   "strategy",
			Message: fmt.Sprintf("unknown strategy %q", strategy),
			Err:     contracts.ErrUnknownStrategy,
		}
	}

	instruments := universe.List()
	if len(instruments) == 0 {
		return contracts.Selection{}, contracts.ErrInsufficientUniverse
	}

	sel := contracts.Selection{
		Strategy:       strategy,
		RequestedCount: count,
	}

	if strategy.IgnoresCount() {
		sel.Instruments = instruments
		sel.CountIgnored = true
		return sel, nil
	}

	n := count
	switch {
	case n < 1:
		n = 1
		sel.Clamped = true
	case n > len(instruments):
		n = len(instruments)
		sel.Clamped = true
	}

	if sel.Clamped {
		s.logger.WithFields(map[string]interface{}{
			"requested": count,
			"clamped":   n,
			"universe":  len(instruments),
			"strategy":  strategy,
		}).Warn("Selection count clamped")
	}

	switch strategy {
	case contracts.StrategyDiversified:
		sel.Instruments = diversified(instruments, n)
	case contracts.StrategyTop:
		sel.Instruments = instruments[:n]
	case contracts.StrategyRandom:
		sel.Instruments = sample(instruments, n, rng)
	}

	return sel, nil
}

// diversified round-robins over sector buckets in first-appearance order,
// one instrument per sector per round, each bucket consumed in catalog order
func diversified(instruments []contracts.Instrument, n int) []contracts.Instrument {
	order := make([]string, 0)
	buckets := make(map[string][]int)
	for i, inst := range instruments {
		if _, ok := buckets[inst.Sector]; !ok {
			order = append(order, inst.Sector)
		}
		buckets[inst.Sector] = append(buckets[inst.Sector], i)
	}

	// bucket별 커서 (원본 슬라이스는 변경하지 않음)
	cursor := make(map[string]int, len(order))
	out := make([]contracts.Instrument, 0, n)
	for len(out) < n {
		progressed := false
		for _, sector := range order {
			if len(out) >= n {
				break
			}
			idx := cursor[sector]
			if idx >= len(buckets[sector]) {
				continue
			}
			out = append(out, instruments[buckets[sector][idx]])
			cursor[sector] = idx + 1
			progressed = true
		}
		if !progressed {
			break
		}
	}

	return out
}

// sample draws n distinct instruments uniformly without replacement (partial Fisher-Yates)
func sample(instruments []contracts.Instrument, n int, rng contracts.Rand) []contracts.Instrument {
	pool := make([]contracts.Instrument, len(instruments))
	copy(pool, instruments)

	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:n]
}
