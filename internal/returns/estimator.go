package returns

import (
	"math"

	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/internal/strategyconfig"
)

// Config holds the synthetic return model constants
type Config struct {
	SectorRates        map[string]float64
	DefaultRate        float64 // 미등록 섹터
	PremiumCoefficient float64 // (beta - 1) 당 프리미엄
	NoiseAmplitude     float64 // noise ∈ [-amp, +amp)
	Floor              float64
}

// ConfigFrom builds a Config from the engine tuning file
func ConfigFrom(cfg strategyconfig.Returns) Config {
	return Config{
		SectorRates:        cfg.Rates(),
		DefaultRate:        cfg.DefaultRate,
		PremiumCoefficient: cfg.PremiumCoefficient,
		NoiseAmplitude:     cfg.NoiseAmplitude,
		Floor:              cfg.Floor,
	}
}

// Estimator derives synthetic expected annual returns
// ⭐ SSOT: 기대수익률 산출식은 여기서만
type Estimator struct {
	config Config
}

// NewEstimator creates a new estimator
func NewEstimator(config Config) *Estimator {
	return &Estimator{config: config}
}

// SectorRate returns the base rate for a sector, or the default rate
func (e *Estimator) SectorRate(sector string) float64 {
	if rate, ok := e.config.SectorRates[sector]; ok {
		return rate
	}
	return e.config.DefaultRate
}

// Base returns the noise-free estimate for one instrument
func (e *Estimator) Base(inst contracts.Instrument) float64 {
	return e.SectorRate(inst.Sector) + (inst.Beta-1.0)*e.config.PremiumCoefficient
}

// Estimate returns one estimate per selected instrument.
// rng is drawn exactly once per instrument, in selection order.
func (e *Estimator) Estimate(sel contracts.Selection, rng contracts.Rand) contracts.ReturnEstimate {
	out := make(contracts.ReturnEstimate, sel.Len())
	for _, inst := range sel.Instruments {
		noise := e.config.NoiseAmplitude * (2*rng.Float64() - 1)
		out[inst.Symbol] = math.Max(e.config.Floor, e.Base(inst)+noise)
	}
	return out
}
