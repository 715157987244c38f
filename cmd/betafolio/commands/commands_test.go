package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/pkg/config"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

func TestParseReturnFlag(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"12%", 0.12},
		{" 8.5 % ", 0.085},
		{"12", 0.12},
		{"0.12", 0.12},
		{"1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseReturnFlag(tt.raw)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-12)
		})
	}

	got, err := ParseReturnFlag("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseReturnFlag("x%")
	assert.Error(t, err)
}

func TestBuildRequest(t *testing.T) {
	req, err := buildRequest(5, 1.2, "12%", "TOP")
	require.NoError(t, err)
	assert.Equal(t, 5, req.Count)
	assert.Equal(t, contracts.StrategyTop, req.Strategy)
	require.NotNil(t, req.TargetReturn)
	assert.InDelta(t, 0.12, *req.TargetReturn, 1e-12)

	_, err = buildRequest(5, 1.2, "", "momentum")
	assert.True(t, errors.Is(err, contracts.ErrUnknownStrategy))
}

func TestBuildEngine_Defaults(t *testing.T) {
	cfg := &config.Config{
		Engine: config.EngineConfig{Seed: 11, Workers: 2},
	}

	eng, err := buildEngine(cfg, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 20, eng.Catalog().Len())
	assert.Len(t, eng.ConfigHash(), 64)

	cfg.Engine.ConfigFile = "does-not-exist.yaml"
	_, err = buildEngine(cfg, logger.NewNop())
	assert.Error(t, err)
}

func TestHoldingRows_SortedByWeight(t *testing.T) {
	res := &contracts.OptimizationResult{
		Instruments: []contracts.Instrument{
			{Symbol: "A", Sector: "Technology", Beta: 1.2},
			{Symbol: "B", Sector: "Healthcare", Beta: 0.7},
			{Symbol: "C", Sector: "Financial Services", Beta: 1.0},
		},
		Weights: contracts.Weights{"A": 0.2, "B": 0.5, "C": 0.3},
		Returns: contracts.ReturnEstimate{"A": 0.12, "B": 0.08, "C": 0.1},
	}

	rows := holdingRows(res)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"B", "Healthcare", "0.70", "50.00%", "8.00%"}, rows[0])
	assert.Equal(t, "C", rows[1][0])
	assert.Equal(t, "A", rows[2][0])
	assert.Equal(t, "A", res.Instruments[0].Symbol, "result left untouched")
}
