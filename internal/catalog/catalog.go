package catalog

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wonny/betafolio/backend/internal/contracts"
)

// ErrEmptyCatalog is a startup configuration error
var ErrEmptyCatalog = errors.New("catalog: no instruments")

// Catalog is the read-only investable universe
// ⭐ SSOT: 종목 순서(시가총액 내림차순)는 여기서 고정
type Catalog struct {
	instruments []contracts.Instrument
	bySymbol    map[string]int
	sectors     []string
}

// New validates and freezes a universe. Input order is kept as catalog order.
func New(instruments []contracts.Instrument) (*Catalog, error) {
	if len(instruments) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		instruments: make([]contracts.Instrument, len(instruments)),
		bySymbol:    make(map[string]int, len(instruments)),
	}
	copy(c.instruments, instruments)

	sectorSet := make(map[string]bool)
	for i, inst := range c.instruments {
		if strings.TrimSpace(inst.Symbol) == "" {
			return nil, fmt.Errorf("catalog: instrument[%d]: symbol required", i)
		}
		if _, dup := c.bySymbol[inst.Symbol]; dup {
			return nil, fmt.Errorf("catalog: duplicate symbol %s", inst.Symbol)
		}
		if strings.TrimSpace(inst.Sector) == "" {
			return nil, fmt.Errorf("catalog: %s: sector required", inst.Symbol)
		}
		if math.IsNaN(inst.Beta) || math.IsInf(inst.Beta, 0) {
			return nil, fmt.Errorf("catalog: %s: beta must be finite", inst.Symbol)
		}
		if inst.MarketCap < 0 {
			return nil, fmt.Errorf("catalog: %s: market_cap must be >= 0", inst.Symbol)
		}

		c.bySymbol[inst.Symbol] = i
		if !sectorSet[inst.Sector] {
			sectorSet[inst.Sector] = true
			c.sectors = append(c.sectors, inst.Sector)
		}
	}
	sort.Strings(c.sectors)

	return c, nil
}

// MustNew panics on invalid input; for compiled-in universes and tests
func MustNew(instruments []contracts.Instrument) *Catalog {
	c, err := New(instruments)
	if err != nil {
		panic(err)
	}
	return c
}

// List returns all instruments in catalog order
func (c *Catalog) List() []contracts.Instrument {
	out := make([]contracts.Instrument, len(c.instruments))
	copy(out, c.instruments)
	return out
}

// Len returns the number of instruments
func (c *Catalog) Len() int {
	return len(c.instruments)
}

// Sectors returns distinct sector names, sorted
func (c *Catalog) Sectors() []string {
	out := make([]string, len(c.sectors))
	copy(out, c.sectors)
	return out
}

// Lookup finds an instrument by symbol
func (c *Catalog) Lookup(symbol string) (contracts.Instrument, bool) {
	i, ok := c.bySymbol[symbol]
	if !ok {
		return contracts.Instrument{}, false
	}
	return c.instruments[i], true
}

// Filter returns instruments of one sector (case-insensitive, "" = all), at most limit (0 = no limit)
func (c *Catalog) Filter(sector string, limit int) []contracts.Instrument {
	out := make([]contracts.Instrument, 0)
	for _, inst := range c.instruments {
		if sector != "" && !strings.EqualFold(inst.Sector, sector) {
			continue
		}
		out = append(out, inst)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// BetaRange returns the smallest and largest beta in the universe
func (c *Catalog) BetaRange() (min, max float64) {
	min, max = c.instruments[0].Beta, c.instruments[0].Beta
	for _, inst := range c.instruments[1:] {
		min = math.Min(min, inst.Beta)
		max = math.Max(max, inst.Beta)
	}
	return min, max
}
