package strategyconfig

import (
	"fmt"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.EngineID == "" {
		return ValidationError{"meta.engine_id", "required"}
	}

	// === Returns ===
	seen := make(map[string]bool, len(cfg.Returns.SectorRates))
	for i, sr := range cfg.Returns.SectorRates {
		field := fmt.Sprintf("returns.sector_rates[%d]", i)
		if sr.Sector == "" {
			return ValidationError{field + ".sector", "required"}
		}
		if seen[sr.Sector] {
			return ValidationError{field + ".sector", fmt.Sprintf("duplicate sector %q", sr.Sector)}
		}
		seen[sr.Sector] = true
		if err := validateRange(sr.Rate, -1, 1, field+".rate"); err != nil {
			return err
		}
	}
	if err := validateRange(cfg.Returns.DefaultRate, -1, 1, "returns.default_rate"); err != nil {
		return err
	}
	if cfg.Returns.NoiseAmplitude < 0 {
		return ValidationError{"returns.noise_amplitude", "must be >= 0"}
	}
	// ReturnEstimate는 음수 불가
	if cfg.Returns.Floor < 0 {
		return ValidationError{"returns.floor", "must be >= 0"}
	}

	// === Search ===
	s := cfg.Search
	if s.MaxAttempts < 1 {
		return ValidationError{"search.max_attempts", "must be >= 1"}
	}
	if s.BetaTolerance <= 0 {
		return ValidationError{"search.beta_tolerance", "must be > 0"}
	}
	if s.CombinedTolerance <= 0 {
		return ValidationError{"search.combined_tolerance", "must be > 0"}
	}
	if s.MaxRedraws < 0 {
		return ValidationError{"search.max_redraws", "must be >= 0"}
	}
	if len(s.Exponents) == 0 {
		return ValidationError{"search.exponents", "must not be empty"}
	}
	for i, e := range s.Exponents {
		if e <= 0 {
			return ValidationError{fmt.Sprintf("search.exponents[%d]", i), "must be > 0"}
		}
	}
	if err := validateRange(s.MinWeight, 0, 1, "search.min_weight"); err != nil {
		return err
	}
	if err := validateObjective(s.Objective, "search.objective"); err != nil {
		return err
	}
	if s.ReturnTolerance <= 0 {
		return ValidationError{"search.return_tolerance", "must be > 0"}
	}

	// === Evaluation ===
	e := cfg.Evaluation
	if e.VolatilityMin <= 0 {
		return ValidationError{"evaluation.volatility_min", "must be > 0"}
	}
	if e.VolatilityMin > e.VolatilityMax {
		return ValidationError{"evaluation", "volatility_min must be <= volatility_max"}
	}
	if e.BetaTolerance <= 0 {
		return ValidationError{"evaluation.beta_tolerance", "must be > 0"}
	}
	if e.ReturnTolerance <= 0 {
		return ValidationError{"evaluation.return_tolerance", "must be > 0"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 탐색 상한이 크면 요청 지연 증가
	if cfg.Search.MaxAttempts > 100_000 {
		warnings = append(warnings, Warning{
			Code:    "HIGH_ATTEMPT_CAP",
			Message: fmt.Sprintf("max_attempts=%d: 요청당 지연 증가 우려", cfg.Search.MaxAttempts),
		})
	}

	// 탐색 허용오차가 평가 허용오차보다 넓으면 조기 종료 후 미달성 가능
	if cfg.Search.BetaTolerance > cfg.Evaluation.BetaTolerance {
		warnings = append(warnings, Warning{
			Code:    "LOOSE_SEARCH_TOLERANCE",
			Message: "search.beta_tolerance > evaluation.beta_tolerance: 조기 종료 결과가 미달성으로 보고될 수 있음",
		})
	}

	// 수익률 우선 기준이 평가 기준보다 넓으면 target_return 미달성 가능
	if cfg.Search.ReturnTolerance > cfg.Evaluation.ReturnTolerance {
		warnings = append(warnings, Warning{
			Code:    "LOOSE_RETURN_TOLERANCE",
			Message: "search.return_tolerance > evaluation.return_tolerance: target_return 전략 결과가 미달성으로 보고될 수 있음",
		})
	}

	// min_weight가 크면 beta 조정 여지 감소
	if cfg.Search.MinWeight > 0.05 {
		warnings = append(warnings, Warning{
			Code:    "HIGH_MIN_WEIGHT",
			Message: "min_weight > 5%: 목표 beta 탐색 범위가 좁아짐",
		})
	}

	// 노이즈가 섹터 간 차이보다 크면 섹터 테이블 의미 약화
	if cfg.Returns.NoiseAmplitude > 0.05 {
		warnings = append(warnings, Warning{
			Code:    "HIGH_NOISE",
			Message: "noise_amplitude > 5%: 섹터 수익률 차이가 노이즈에 묻힘",
		})
	}

	return warnings
}

// === Helper Functions ===

func validateObjective(o Objective, field string) error {
	if o.BetaWeight < 0 || o.ReturnWeight < 0 {
		return ValidationError{field, "weights must be >= 0"}
	}
	if o.BetaWeight+o.ReturnWeight <= 0 {
		return ValidationError{field, "weights must not both be 0"}
	}
	return nil
}

// validateRange는 값이 [min, max] 범위인지 검증
func validateRange(v, min, max float64, field string) error {
	if v < min || v > max {
		return ValidationError{field, fmt.Sprintf("must be in range [%g, %g]", min, max)}
	}
	return nil
}
