package strategyconfig

// Config는 엔진 튜닝 상수 전체 (요청 간 불변)
// ⭐ SSOT: 섹터 수익률 테이블, 탐색/평가 상수는 여기서만
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Returns    Returns    `yaml:"returns" json:"returns"`
	Search     Search     `yaml:"search" json:"search"`
	Evaluation Evaluation `yaml:"evaluation" json:"evaluation"`
}

// Meta 메타 정보
type Meta struct {
	EngineID string `yaml:"engine_id" json:"engine_id"`
	Version  string `yaml:"version" json:"version"`
}

// Returns ReturnEstimator 설정
type Returns struct {
	SectorRates        []SectorRate `yaml:"sector_rates" json:"sector_rates"`
	DefaultRate        float64      `yaml:"default_rate" json:"default_rate"` // 미등록 섹터
	PremiumCoefficient float64      `yaml:"premium_coefficient" json:"premium_coefficient"`
	NoiseAmplitude     float64      `yaml:"noise_amplitude" json:"noise_amplitude"` // ±
	Floor              float64      `yaml:"floor" json:"floor"`
}

// SectorRate is one row of the sector base-rate table.
// A slice keeps the canonical JSON (and the hash) ordered.
type SectorRate struct {
	Sector string  `yaml:"sector" json:"sector"`
	Rate   float64 `yaml:"rate" json:"rate"`
}

// Rates returns the table as a lookup map
func (r Returns) Rates() map[string]float64 {
	out := make(map[string]float64, len(r.SectorRates))
	for _, sr := range r.SectorRates {
		out[sr.Sector] = sr.Rate
	}
	return out
}

// Search WeightOptimizer 설정
type Search struct {
	MaxAttempts       int       `yaml:"max_attempts" json:"max_attempts"`
	BetaTolerance     float64   `yaml:"beta_tolerance" json:"beta_tolerance"`         // beta 단일 목적
	CombinedTolerance float64   `yaml:"combined_tolerance" json:"combined_tolerance"` // beta+return 목적
	MaxRedraws        int       `yaml:"max_redraws" json:"max_redraws"`               // all-zero draw 재시도
	Exponents         []float64 `yaml:"exponents" json:"exponents"`                   // u^k 샘플링, attempt마다 순환
	MinWeight         float64   `yaml:"min_weight" json:"min_weight"`                 // 0 = 제약 없음
	ReturnTolerance   float64   `yaml:"return_tolerance" json:"return_tolerance"`     // target_return 전략: |Δr| 우선 기준

	Objective Objective `yaml:"objective" json:"objective"`
}

// Objective weights the beta and return distances of the combined score
type Objective struct {
	BetaWeight   float64 `yaml:"beta_weight" json:"beta_weight"`
	ReturnWeight float64 `yaml:"return_weight" json:"return_weight"`
}

// Evaluation PortfolioEvaluator 설정
type Evaluation struct {
	RiskFreeRate    float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
	VolatilityMin   float64 `yaml:"volatility_min" json:"volatility_min"`
	VolatilityMax   float64 `yaml:"volatility_max" json:"volatility_max"`
	BetaTolerance   float64 `yaml:"beta_tolerance" json:"beta_tolerance"`     // target_beta_achieved
	ReturnTolerance float64 `yaml:"return_tolerance" json:"return_tolerance"` // target_return_achieved
}

// Default returns the built-in engine configuration
func Default() *Config {
	return &Config{
		Meta: Meta{
			EngineID: "betafolio_default",
			Version:  "1.0.0",
		},
		Returns: Returns{
			SectorRates: []SectorRate{
				{Sector: "Technology", Rate: 0.12},
				{Sector: "Healthcare", Rate: 0.08},
				{Sector: "Financial Services", Rate: 0.10},
				{Sector: "Consumer Discretionary", Rate: 0.11},
				{Sector: "Consumer Staples", Rate: 0.06},
				{Sector: "Communication Services", Rate: 0.09},
			},
			DefaultRate:        0.08,
			PremiumCoefficient: 0.02,
			NoiseAmplitude:     0.02,
			Floor:              0.01,
		},
		Search: Search{
			MaxAttempts:       1000,
			BetaTolerance:     0.1,
			CombinedTolerance: 0.015,
			MaxRedraws:        10,
			Exponents:         []float64{1, 2, 4, 8, 16, 32, 64},
			MinWeight:         0,
			ReturnTolerance:   0.01,

			Objective: Objective{BetaWeight: 1, ReturnWeight: 1},
		},
		Evaluation: Evaluation{
			RiskFreeRate:    0.02,
			VolatilityMin:   0.15,
			VolatilityMax:   0.35,
			BetaTolerance:   0.1,
			ReturnTolerance: 0.02,
		},
	}
}
