package decision

import (
	"time"

	"verdict/internal/rule"
	"verdict/internal/signal"
	"verdict/internal/types"
)

// ConfidenceLevel 决策置信度的五档分级。
type ConfidenceLevel string

const (
	ConfidenceVeryLow  ConfidenceLevel = "VERY_LOW"
	ConfidenceLow      ConfidenceLevel = "LOW"
	ConfidenceMedium   ConfidenceLevel = "MEDIUM"
	ConfidenceHigh     ConfidenceLevel = "HIGH"
	ConfidenceVeryHigh ConfidenceLevel = "VERY_HIGH"
)

// Decision 决策合成的最终输出。返回后不可变，
// 同时追加到内存历史并落审计库。
type Decision struct {
	ID                  string                 `json:"decision_id"`
	Symbol              string                 `json:"symbol"`
	Type                signal.Type            `json:"decision_type"`
	RecommendedAction   string                 `json:"recommended_action"`
	Quantity            int64                  `json:"quantity,omitempty"`
	Price               float64                `json:"price,omitempty"`
	ConfidenceLevel     ConfidenceLevel        `json:"confidence_level"`
	ConfidenceScore     float64                `json:"confidence_score"`
	RiskLevel           types.RiskLevel        `json:"risk_level"`
	RiskScore           float64                `json:"risk_score"`
	Reasoning           string                 `json:"reasoning"`
	SupportingSignalIDs []string               `json:"supporting_signal_ids,omitempty"`
	MarketCondition     types.MarketCondition  `json:"market_condition"`
	RuleResults         []rule.ExecutionResult `json:"rule_results,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
}

// bucketConfidence maps a [0,1] score to its level.
func bucketConfidence(score float64) ConfidenceLevel {
	switch {
	case score >= 0.8:
		return ConfidenceVeryHigh
	case score >= 0.6:
		return ConfidenceHigh
	case score >= 0.4:
		return ConfidenceMedium
	case score >= 0.2:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}
