package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregator_SingleSignal(t *testing.T) {
	agg := NewAggregator(DefaultWeights())

	out := agg.Aggregate("acme", []Signal{
		{ID: "sig-1", Symbol: "ACME", Source: SourceTechnicalAnalysis, Type: TypeBuy, Strength: 0.7, Confidence: 0.8},
	})

	assert.Equal(t, "ACME", out.Symbol)
	assert.Equal(t, TypeBuy, out.Type)
	assert.InDelta(t, 0.7, out.Strength, 1e-9)
	assert.InDelta(t, 0.8, out.Confidence, 1e-9)
	assert.Equal(t, 1, out.BuyCount)
	assert.Equal(t, []string{"sig-1"}, out.SignalIDs)
}

func TestAggregator_EmptySet(t *testing.T) {
	agg := NewAggregator(DefaultWeights())

	out := agg.Aggregate("ACME", nil)

	assert.Equal(t, TypeHold, out.Type)
	assert.Zero(t, out.Strength)
	assert.Zero(t, out.Confidence)
	assert.Zero(t, out.BuyCount+out.SellCount+out.HoldCount)
}

func TestAggregator_WeightedConsensus(t *testing.T) {
	agg := NewAggregator(DefaultWeights())

	out := agg.Aggregate("ACME", []Signal{
		{ID: "t", Symbol: "ACME", Source: SourceTechnicalAnalysis, Type: TypeBuy, Strength: 0.8, Confidence: 0.9},
		{ID: "s", Symbol: "ACME", Source: SourceMarketSentiment, Type: TypeSell, Strength: 0.6, Confidence: 0.5},
	})

	// weights: 0.4*0.9=0.36 buy side, 0.2*0.5=0.10 sell side
	wantStrength := (0.8*0.36 - 0.6*0.10) / 0.46
	wantConfidence := (0.9*0.36 + 0.5*0.10) / 0.46
	assert.Equal(t, TypeBuy, out.Type)
	assert.InDelta(t, wantStrength, out.Strength, 1e-9)
	assert.InDelta(t, wantConfidence, out.Confidence, 1e-9)
	assert.Equal(t, 1, out.BuyCount)
	assert.Equal(t, 1, out.SellCount)
}

func TestAggregator_NeutralBand(t *testing.T) {
	agg := NewAggregator(DefaultWeights())

	t.Run("weak buy stays hold", func(t *testing.T) {
		out := agg.Aggregate("ACME", []Signal{
			{Symbol: "ACME", Source: SourceTechnicalAnalysis, Type: TypeBuy, Strength: 0.05, Confidence: 1},
		})
		assert.Equal(t, TypeHold, out.Type)
		assert.InDelta(t, 0.05, out.Strength, 1e-9)
	})

	t.Run("weak sell stays hold", func(t *testing.T) {
		out := agg.Aggregate("ACME", []Signal{
			{Symbol: "ACME", Source: SourcePredictionModel, Type: TypeSell, Strength: 0.09, Confidence: 1},
		})
		assert.Equal(t, TypeHold, out.Type)
	})

	t.Run("sell past threshold", func(t *testing.T) {
		out := agg.Aggregate("ACME", []Signal{
			{Symbol: "ACME", Source: SourcePredictionModel, Type: TypeSell, Strength: 0.5, Confidence: 1},
		})
		assert.Equal(t, TypeSell, out.Type)
		assert.InDelta(t, 0.5, out.Strength, 1e-9)
	})
}

func TestAggregator_ZeroConfidenceSignals(t *testing.T) {
	agg := NewAggregator(DefaultWeights())

	out := agg.Aggregate("ACME", []Signal{
		{Symbol: "ACME", Source: SourceTechnicalAnalysis, Type: TypeBuy, Strength: 0.9, Confidence: 0},
	})

	// total weight is zero, consensus stays neutral
	assert.Equal(t, TypeHold, out.Type)
	assert.Zero(t, out.Strength)
	assert.Zero(t, out.Confidence)
	assert.Equal(t, 1, out.BuyCount)
}

func TestAggregator_FallbackWeightSources(t *testing.T) {
	agg := NewAggregator(DefaultWeights())

	out := agg.Aggregate("ACME", []Signal{
		{Symbol: "ACME", Source: SourceNewsAnalysis, Type: TypeBuy, Strength: 0.6, Confidence: 0.5},
	})

	assert.Equal(t, TypeBuy, out.Type)
	assert.InDelta(t, 0.6, out.Strength, 1e-9)
}

func TestSignal_Normalize(t *testing.T) {
	sig := Signal{Symbol: " acme ", Strength: 1.7, Confidence: -0.2}.Normalize()

	assert.Equal(t, "ACME", sig.Symbol)
	assert.Equal(t, 1.0, sig.Strength)
	assert.Equal(t, 0.0, sig.Confidence)
}
