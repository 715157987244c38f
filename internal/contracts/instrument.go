package contracts

// Instrument is one immutable entry of the investable universe
// ⭐ SSOT: 종목 레퍼런스 데이터 구조는 여기서만
type Instrument struct {
	Symbol    string  `json:"symbol" yaml:"symbol"`
	Name      string  `json:"name" yaml:"name"`
	Sector    string  `json:"sector" yaml:"sector"`
	Beta      float64 `json:"beta" yaml:"beta"`
	MarketCap float64 `json:"market_cap" yaml:"market_cap"` // size proxy, 카탈로그 정렬 기준
}

// Rand is the random source threaded through selection, estimation and search.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Selection is the ordered, duplicate-free subset chosen for one request
type Selection struct {
	Instruments    []Instrument `json:"instruments"`
	Strategy       Strategy     `json:"strategy"`
	RequestedCount int          `json:"requested_count"`
	Clamped        bool         `json:"clamped"`       // count가 카탈로그 크기 등으로 조정됨
	CountIgnored   bool         `json:"count_ignored"` // target_return 전략
}

// Len returns the number of selected instruments
func (s Selection) Len() int {
	return len(s.Instruments)
}

// Symbols returns symbols in selection order
func (s Selection) Symbols() []string {
	out := make([]string, len(s.Instruments))
	for i, inst := range s.Instruments {
		out[i] = inst.Symbol
	}
	return out
}

// Betas returns betas in selection order
func (s Selection) Betas() []float64 {
	out := make([]float64, len(s.Instruments))
	for i, inst := range s.Instruments {
		out[i] = inst.Beta
	}
	return out
}

// Sectors returns the distinct sectors covered by the selection
func (s Selection) Sectors() map[string]int {
	out := make(map[string]int)
	for _, inst := range s.Instruments {
		out[inst.Sector]++
	}
	return out
}

// ReturnEstimate maps symbol → synthetic expected annual return
type ReturnEstimate map[string]float64

// Values returns estimates aligned with the given instruments
func (r ReturnEstimate) Values(instruments []Instrument) []float64 {
	out := make([]float64, len(instruments))
	for i, inst := range instruments {
		out[i] = r[inst.Symbol]
	}
	return out
}

// Weights maps symbol → portfolio weight in [0, 1]
type Weights map[string]float64

// Sum returns the total weight
func (w Weights) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Values returns weights aligned with the given instruments
func (w Weights) Values(instruments []Instrument) []float64 {
	out := make([]float64, len(instruments))
	for i, inst := range instruments {
		out[i] = w[inst.Symbol]
	}
	return out
}

// NewWeights zips instruments with a weight vector of the same length
func NewWeights(instruments []Instrument, values []float64) Weights {
	w := make(Weights, len(instruments))
	for i, inst := range instruments {
		w[inst.Symbol] = values[i]
	}
	return w
}

// EqualWeights assigns 1/n to every instrument
func EqualWeights(instruments []Instrument) Weights {
	w := make(Weights, len(instruments))
	if len(instruments) == 0 {
		return w
	}
	each := 1.0 / float64(len(instruments))
	for _, inst := range instruments {
		w[inst.Symbol] = each
	}
	return w
}
