package contracts

import (
	"errors"
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyDiversified, false},
		{"diversified", StrategyDiversified, false},
		{"RANDOM", StrategyRandom, false},
		{" top ", StrategyTop, false},
		{"target_return", StrategyTargetReturn, false},
		{"momentum", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownStrategy) || !errors.Is(err, ErrInvalidParameter) {
					t.Fatalf("ParseStrategy(%q) error = %v, want ErrUnknownStrategy", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStrategy(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestOptimizationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     OptimizationRequest
		wantErr error
	}{
		{"valid default", OptimizationRequest{Count: 10, TargetBeta: 1.0, Strategy: StrategyDiversified}, nil},
		{"count too low", OptimizationRequest{Count: 0, TargetBeta: 1.0, Strategy: StrategyTop}, ErrInvalidParameter},
		{"count too high", OptimizationRequest{Count: 51, TargetBeta: 1.0, Strategy: StrategyRandom}, ErrInvalidParameter},
		{"beta too low", OptimizationRequest{Count: 5, TargetBeta: 0.05, Strategy: StrategyTop}, ErrInvalidParameter},
		{"beta too high", OptimizationRequest{Count: 5, TargetBeta: 3.5, Strategy: StrategyTop}, ErrInvalidParameter},
		{"return too high", OptimizationRequest{Count: 5, TargetBeta: 1, TargetReturn: ptr(0.6), Strategy: StrategyTop}, ErrInvalidParameter},
		{"target_return needs target", OptimizationRequest{Count: 5, TargetBeta: 1, Strategy: StrategyTargetReturn}, ErrTargetReturnRequired},
		{"target_return ignores count", OptimizationRequest{Count: 0, TargetBeta: 1, TargetReturn: ptr(0.12), Strategy: StrategyTargetReturn}, nil},
		{"unknown strategy", OptimizationRequest{Count: 5, TargetBeta: 1, Strategy: "momentum"}, ErrUnknownStrategy},
		{"beta NaN", OptimizationRequest{Count: 5, TargetBeta: math.NaN(), Strategy: StrategyTop}, ErrInvalidParameter},
		{"beta +Inf", OptimizationRequest{Count: 5, TargetBeta: math.Inf(1), Strategy: StrategyTop}, ErrInvalidParameter},
		{"return NaN", OptimizationRequest{Count: 5, TargetBeta: 1, TargetReturn: ptr(math.NaN()), Strategy: StrategyTop}, ErrInvalidParameter},
		{"return NaN target_return", OptimizationRequest{TargetBeta: 1, TargetReturn: ptr(math.NaN()), Strategy: StrategyTargetReturn}, ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("Validate() error %v should match ErrInvalidParameter", err)
			}
		})
	}
}

func TestOptimizationRequest_Key(t *testing.T) {
	tests := []struct {
		name string
		req  OptimizationRequest
		want string
	}{
		{"no target return", OptimizationRequest{Count: 10, TargetBeta: 1.0, Strategy: StrategyDiversified}, "10_1_none_diversified"},
		{"with target return", OptimizationRequest{Count: 5, TargetBeta: 1.2, TargetReturn: ptr(0.12), Strategy: StrategyTop}, "5_1.2_0.12_top"},
		{"count zeroed for target_return", OptimizationRequest{Count: 33, TargetBeta: 0.8, TargetReturn: ptr(0.1), Strategy: StrategyTargetReturn}, "0_0.8_0.1_target_return"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeTargetReturn(t *testing.T) {
	if got := NormalizeTargetReturn(12); got != 0.12 {
		t.Errorf("NormalizeTargetReturn(12) = %v, want 0.12", got)
	}
	if got := NormalizeTargetReturn(0.08); got != 0.08 {
		t.Errorf("NormalizeTargetReturn(0.08) = %v, want 0.08", got)
	}
}

func TestWeightsHelpers(t *testing.T) {
	instruments := []Instrument{{Symbol: "AAA"}, {Symbol: "BBB"}, {Symbol: "CCC"}, {Symbol: "DDD"}}

	eq := EqualWeights(instruments)
	if math.Abs(eq.Sum()-1.0) > 1e-12 {
		t.Errorf("EqualWeights sum = %v, want 1", eq.Sum())
	}
	if eq["CCC"] != 0.25 {
		t.Errorf("EqualWeights[CCC] = %v, want 0.25", eq["CCC"])
	}

	w := NewWeights(instruments, []float64{0.1, 0.2, 0.3, 0.4})
	vals := w.Values(instruments)
	for i, want := range []float64{0.1, 0.2, 0.3, 0.4} {
		if vals[i] != want {
			t.Errorf("Values()[%d] = %v, want %v", i, vals[i], want)
		}
	}

	if len(EqualWeights(nil)) != 0 {
		t.Error("EqualWeights(nil) should be empty")
	}
}

func TestSelectionHelpers(t *testing.T) {
	sel := Selection{Instruments: []Instrument{
		{Symbol: "AAA", Sector: "Tech", Beta: 1.2},
		{Symbol: "BBB", Sector: "Tech", Beta: 0.8},
		{Symbol: "CCC", Sector: "Energy", Beta: 1.0},
	}}

	if sel.Len() != 3 {
		t.Errorf("Len() = %d, want 3", sel.Len())
	}
	if got := sel.Symbols(); got[2] != "CCC" {
		t.Errorf("Symbols() = %v", got)
	}
	if got := sel.Betas(); got[1] != 0.8 {
		t.Errorf("Betas() = %v", got)
	}
	if got := sel.Sectors(); got["Tech"] != 2 || got["Energy"] != 1 {
		t.Errorf("Sectors() = %v", got)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     float64
	}{
		{1.23456, BetaDecimals, 1.235},
		{0.12346, ReturnDecimals, 0.1235},
		{-0.4999, 1, -0.5},
		{1.09996, BetaDecimals, 1.1},
	}

	for _, tt := range tests {
		if got := Round(tt.v, tt.decimals); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.v, tt.decimals, got, tt.want)
		}
	}
}
