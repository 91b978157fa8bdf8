package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"verdict/internal/types"
)

func TestAssessor_Assess(t *testing.T) {
	assessor := NewAssessor()

	t.Run("low exposure high volatility", func(t *testing.T) {
		out := assessor.Assess(types.DecisionRequest{
			Symbol: "acme", PositionValue: 10_000, AvailableCapital: 100_000,
		}, types.MarketContext{Volatility: types.RiskHigh})

		assert.Equal(t, "ACME", out.Symbol)
		assert.InDelta(t, 0.1, out.ExposureRatio, 1e-9)
		assert.InDelta(t, 0.15, out.Score, 1e-9)
		assert.Equal(t, types.RiskLow, out.Level)
	})

	t.Run("score caps at one", func(t *testing.T) {
		out := assessor.Assess(types.DecisionRequest{
			Symbol: "ACME", PositionValue: 80_000, AvailableCapital: 100_000,
		}, types.MarketContext{Volatility: types.RiskVeryHigh})

		assert.InDelta(t, 0.8, out.ExposureRatio, 1e-9)
		assert.InDelta(t, 1.0, out.Score, 1e-9)
		assert.Equal(t, types.RiskVeryHigh, out.Level)
	})

	t.Run("exposure caps at one", func(t *testing.T) {
		out := assessor.Assess(types.DecisionRequest{
			Symbol: "ACME", PositionValue: 300_000, AvailableCapital: 100_000,
		}, types.MarketContext{Volatility: types.RiskVeryLow})

		assert.InDelta(t, 1.0, out.ExposureRatio, 1e-9)
		assert.InDelta(t, 0.5, out.Score, 1e-9)
		assert.Equal(t, types.RiskVeryHigh, out.Level)
	})

	t.Run("unknown volatility keeps neutral multiplier", func(t *testing.T) {
		out := assessor.Assess(types.DecisionRequest{
			Symbol: "ACME", PositionValue: 30_000, AvailableCapital: 100_000,
		}, types.MarketContext{})

		assert.InDelta(t, 0.3, out.Score, 1e-9)
		assert.Equal(t, types.RiskMedium, out.Level)
	})

	t.Run("zero capital means zero exposure", func(t *testing.T) {
		out := assessor.Assess(types.DecisionRequest{Symbol: "ACME", PositionValue: 10_000},
			types.MarketContext{Volatility: types.RiskVeryHigh})

		assert.Zero(t, out.ExposureRatio)
		assert.Zero(t, out.Score)
		assert.Equal(t, types.RiskLow, out.Level)
	})
}

func TestBucketBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  types.RiskLevel
	}{
		{0.0, types.RiskLow},
		{0.19, types.RiskLow},
		{0.2, types.RiskMedium},
		{0.39, types.RiskMedium},
		{0.4, types.RiskHigh},
		{0.69, types.RiskHigh},
		{0.7, types.RiskVeryHigh},
		{1.0, types.RiskVeryHigh},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, bucket(tc.score), "score %.2f", tc.score)
	}
}
