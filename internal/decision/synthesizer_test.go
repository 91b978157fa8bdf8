package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"verdict/internal/risk"
	"verdict/internal/rule"
	"verdict/internal/signal"
	"verdict/internal/types"
)

func buyRequest() types.DecisionRequest {
	return types.DecisionRequest{
		Symbol:           "ACME",
		CurrentPrice:     50,
		AvailableCapital: 100_000,
	}
}

func bullishAggregate() signal.Aggregated {
	return signal.Aggregated{
		Symbol:     "ACME",
		Type:       signal.TypeBuy,
		Strength:   0.7,
		Confidence: 0.9,
		BuyCount:   2,
		SignalIDs:  []string{"sig-1", "sig-2"},
	}
}

func calmAssessment() risk.Assessment {
	return risk.Assessment{Symbol: "ACME", Level: types.RiskLow, Score: 0.1}
}

func TestSynthesizer_BlockingRuleShortCircuits(t *testing.T) {
	synth := NewSynthesizer(DefaultSizing())

	results := []rule.ExecutionResult{
		{RuleID: "hours", Executed: true, ConditionsMet: true, Impact: rule.ImpactBlockTrading},
		{RuleID: "liquidity", Executed: true, ConditionsMet: true, Impact: rule.ImpactReduceConfidence},
	}
	d := synth.Synthesize(buyRequest(), bullishAggregate(), results, calmAssessment(), types.MarketContext{})

	assert.Equal(t, signal.TypeHold, d.Type)
	assert.Equal(t, 1.0, d.ConfidenceScore)
	assert.Equal(t, ConfidenceVeryHigh, d.ConfidenceLevel)
	assert.Zero(t, d.Quantity)
	assert.Contains(t, d.Reasoning, "trading blocked by rules: hours")
}

func TestSynthesizer_ConfidencePenaltyCompounds(t *testing.T) {
	synth := NewSynthesizer(DefaultSizing())
	agg := bullishAggregate()
	agg.Confidence = 1.0

	results := []rule.ExecutionResult{
		{RuleID: "a", Executed: true, ConditionsMet: true, Impact: rule.ImpactReduceConfidence},
		{RuleID: "b", Executed: true, ConditionsMet: true, Impact: rule.ImpactReduceConfidence},
		{RuleID: "c", Executed: true, ConditionsMet: true, Impact: rule.ImpactReduceConfidence},
		{RuleID: "not-met", Executed: true, ConditionsMet: false, Impact: rule.ImpactReduceConfidence},
		{RuleID: "risk", Executed: true, ConditionsMet: true, Impact: rule.ImpactReduceRisk},
	}
	d := synth.Synthesize(buyRequest(), agg, results, calmAssessment(), types.MarketContext{})

	assert.InDelta(t, 0.512, d.ConfidenceScore, 1e-9)
	assert.Equal(t, ConfidenceMedium, d.ConfidenceLevel)
	assert.Equal(t, signal.TypeBuy, d.Type)
}

func TestSynthesizer_BuySizing(t *testing.T) {
	synth := NewSynthesizer(DefaultSizing())

	t.Run("budget floors to lot size", func(t *testing.T) {
		// 5% of 100k = 5000; 5000/50 = 100 shares, exactly one lot
		d := synth.Synthesize(buyRequest(), bullishAggregate(), nil, calmAssessment(), types.MarketContext{})
		assert.EqualValues(t, 100, d.Quantity)
		assert.Contains(t, d.RecommendedAction, "Buy 100 shares of ACME")
	})

	t.Run("odd quantity drops below lot", func(t *testing.T) {
		req := buyRequest()
		req.CurrentPrice = 33
		// 5000/33 = 151 shares, floored to 100
		d := synth.Synthesize(req, bullishAggregate(), nil, calmAssessment(), types.MarketContext{})
		assert.EqualValues(t, 100, d.Quantity)
	})

	t.Run("request cap tightens the budget", func(t *testing.T) {
		req := buyRequest()
		req.MaxPositionValue = 4_000
		// min(5000, 4000)/50 = 80 shares, below one lot
		d := synth.Synthesize(req, bullishAggregate(), nil, calmAssessment(), types.MarketContext{})
		assert.Zero(t, d.Quantity)
		assert.Contains(t, d.RecommendedAction, "below lot size")
	})

	t.Run("non-buy decisions carry no quantity", func(t *testing.T) {
		agg := bullishAggregate()
		agg.Type = signal.TypeSell
		d := synth.Synthesize(buyRequest(), agg, nil, calmAssessment(), types.MarketContext{})
		assert.Zero(t, d.Quantity)
	})
}

func TestSynthesizer_Deterministic(t *testing.T) {
	synth := NewSynthesizer(DefaultSizing())
	mkt := types.MarketContext{Condition: types.BullMarket, Session: types.SessionMorning}

	first := synth.Synthesize(buyRequest(), bullishAggregate(), nil, calmAssessment(), mkt)
	second := synth.Synthesize(buyRequest(), bullishAggregate(), nil, calmAssessment(), mkt)

	assert.NotEqual(t, first.ID, second.ID)
	second.ID = first.ID
	second.CreatedAt = first.CreatedAt
	assert.Equal(t, first, second)
}

func TestSynthesizer_ReasoningTrace(t *testing.T) {
	synth := NewSynthesizer(DefaultSizing())
	mkt := types.MarketContext{Condition: types.SidewaysMarket, Session: types.SessionAfternoon}
	results := []rule.ExecutionResult{
		{RuleID: "liq", Executed: true, ConditionsMet: true, Impact: rule.ImpactReduceConfidence},
	}

	d := synth.Synthesize(buyRequest(), bullishAggregate(), results, calmAssessment(), mkt)

	assert.Contains(t, d.Reasoning, "signal BUY strength 0.70 confidence 0.90")
	assert.Contains(t, d.Reasoning, "market SIDEWAYS session AFTERNOON")
	assert.Contains(t, d.Reasoning, "risk LOW score 0.10")
	assert.Contains(t, d.Reasoning, "rules met: liq(REDUCE_CONFIDENCE)")
	assert.Equal(t, []string{"sig-1", "sig-2"}, d.SupportingSignalIDs)
}

func TestBucketConfidence(t *testing.T) {
	cases := []struct {
		score float64
		want  ConfidenceLevel
	}{
		{0.85, ConfidenceVeryHigh},
		{0.8, ConfidenceVeryHigh},
		{0.7, ConfidenceHigh},
		{0.5, ConfidenceMedium},
		{0.3, ConfidenceLow},
		{0.1, ConfidenceVeryLow},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, bucketConfidence(tc.score), "score %.2f", tc.score)
	}
}
