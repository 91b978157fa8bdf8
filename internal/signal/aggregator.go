package signal

import "verdict/internal/types"

// Classification thresholds for the weighted consensus direction.
const (
	buyThreshold  = 0.1
	sellThreshold = -0.1
)

// Weights 各信号来源的固定权重表，构造后不可变。
type Weights struct {
	Technical  float64 `json:"technical"`
	Prediction float64 `json:"prediction"`
	Sentiment  float64 `json:"sentiment"`
	Risk       float64 `json:"risk"`
	// Fallback applies to sources outside the four weighted ones
	// (news, manual, or future additions).
	Fallback float64 `json:"fallback"`
}

// DefaultWeights 默认权重，四个主来源之和为 1。
func DefaultWeights() Weights {
	return Weights{
		Technical:  0.4,
		Prediction: 0.3,
		Sentiment:  0.2,
		Risk:       0.1,
		Fallback:   0.1,
	}
}

// For returns the table weight for a source.
func (w Weights) For(src Source) float64 {
	switch src {
	case SourceTechnicalAnalysis:
		return w.Technical
	case SourcePredictionModel:
		return w.Prediction
	case SourceMarketSentiment:
		return w.Sentiment
	case SourceRiskManagement:
		return w.Risk
	default:
		return w.Fallback
	}
}

// Aggregator 将同一标的的多个信号归并为单一共识信号。
// 纯函数组件，不持有可变状态。
type Aggregator struct {
	weights Weights
}

func NewAggregator(w Weights) *Aggregator {
	return &Aggregator{weights: w}
}

// Aggregate reduces the signal set into one consensus signal.
// An empty set yields a neutral HOLD with zero strength and confidence.
func (a *Aggregator) Aggregate(symbol string, signals []Signal) Aggregated {
	out := Aggregated{
		Symbol: types.NormalizeSymbol(symbol),
		Type:   TypeHold,
	}
	var totalWeight, weightedStrength, weightedConfidence float64
	for _, raw := range signals {
		sig := raw.Normalize()
		weight := a.weights.For(sig.Source) * sig.Confidence
		totalWeight += weight

		var signed float64
		switch sig.Type {
		case TypeBuy:
			signed = sig.Strength
			out.BuyCount++
		case TypeSell:
			signed = -sig.Strength
			out.SellCount++
		default:
			out.HoldCount++
		}
		weightedStrength += signed * weight
		weightedConfidence += sig.Confidence * weight
		if sig.ID != "" {
			out.SignalIDs = append(out.SignalIDs, sig.ID)
		}
	}
	if totalWeight <= 0 {
		return out
	}

	finalStrength := weightedStrength / totalWeight
	out.Confidence = clamp01(weightedConfidence / totalWeight)
	switch {
	case finalStrength > buyThreshold:
		out.Type = TypeBuy
	case finalStrength < sellThreshold:
		out.Type = TypeSell
	default:
		out.Type = TypeHold
	}
	if finalStrength < 0 {
		finalStrength = -finalStrength
	}
	out.Strength = clamp01(finalStrength)
	return out
}
