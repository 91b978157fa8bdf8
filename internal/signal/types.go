package signal

import (
	"time"

	"verdict/internal/types"
)

// Source 标记信号的产生方。
type Source string

const (
	SourceTechnicalAnalysis Source = "TECHNICAL_ANALYSIS"
	SourcePredictionModel   Source = "PREDICTION_MODEL"
	SourceMarketSentiment   Source = "MARKET_SENTIMENT"
	SourceRiskManagement    Source = "RISK_MANAGEMENT"
	SourceNewsAnalysis      Source = "NEWS_ANALYSIS"
	SourceManual            Source = "MANUAL"
)

// Type 信号建议的方向动作。
type Type string

const (
	TypeBuy              Type = "BUY"
	TypeSell             Type = "SELL"
	TypeHold             Type = "HOLD"
	TypeClosePosition    Type = "CLOSE_POSITION"
	TypeReducePosition   Type = "REDUCE_POSITION"
	TypeIncreasePosition Type = "INCREASE_POSITION"
)

// Signal 单一来源的方向性交易建议，生成后不可变。
// Strength/Confidence 均约束在 [0,1]。
type Signal struct {
	ID          string     `json:"id"`
	Symbol      string     `json:"symbol"`
	Source      Source     `json:"source"`
	Type        Type       `json:"type"`
	Strength    float64    `json:"strength"`
	Confidence  float64    `json:"confidence"`
	GeneratedAt time.Time  `json:"generated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the signal carries an expiry in the past of at.
func (s Signal) Expired(at time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(at)
}

// Normalize 将 symbol 归一并把强度/置信度夹紧到 [0,1]。
func (s Signal) Normalize() Signal {
	s.Symbol = types.NormalizeSymbol(s.Symbol)
	s.Strength = clamp01(s.Strength)
	s.Confidence = clamp01(s.Confidence)
	return s
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Aggregated 多来源信号的加权共识结果。
type Aggregated struct {
	Symbol     string   `json:"symbol"`
	Type       Type     `json:"type"`
	Strength   float64  `json:"strength"`
	Confidence float64  `json:"confidence"`
	BuyCount   int      `json:"buy_count"`
	SellCount  int      `json:"sell_count"`
	HoldCount  int      `json:"hold_count"`
	SignalIDs  []string `json:"signal_ids,omitempty"`
}
