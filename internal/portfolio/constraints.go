package portfolio

import "math"

// Constraints defines weight assignment constraints
// ⭐ SSOT: 비중 제약조건은 여기서만
type Constraints struct {
	MinWeight float64 // 종목당 최소 비중 (0.0 ~ 1.0), 0 = 제약 없음
}

// EffectiveMinWeight returns the floor usable for n instruments.
// A floor with n*floor > 1 is infeasible and is reduced to 1/n.
func (c Constraints) EffectiveMinWeight(n int) float64 {
	if n <= 0 || c.MinWeight <= 0 {
		return 0
	}
	return math.Min(c.MinWeight, 1.0/float64(n))
}

// Apply maps a point of the simplex onto the floored simplex in place:
// w[i] = floor + (1 - n*floor) * w[i]. Sums to 1 are preserved.
func (c Constraints) Apply(w []float64) {
	floor := c.EffectiveMinWeight(len(w))
	if floor == 0 {
		return
	}

	scale := 1.0 - float64(len(w))*floor
	for i := range w {
		w[i] = floor + scale*w[i]
	}
}

// Satisfied reports whether every weight is at least the effective floor
func (c Constraints) Satisfied(w []float64) bool {
	floor := c.EffectiveMinWeight(len(w))
	for _, v := range w {
		if v < floor-1e-12 {
			return false
		}
	}
	return true
}
