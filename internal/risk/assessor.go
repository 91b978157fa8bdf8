package risk

import "verdict/internal/types"

// Assessment 单次请求的风险评估结果，按请求重算，不持久。
type Assessment struct {
	Symbol        string          `json:"symbol"`
	ExposureRatio float64         `json:"exposure_ratio"`
	PositionRisk  float64         `json:"position_risk"`
	Level         types.RiskLevel `json:"overall_risk_level"`
	Score         float64         `json:"risk_score"`
}

// Risk bucket bounds over the adjusted score.
const (
	lowBound    = 0.2
	mediumBound = 0.4
	highBound   = 0.7
)

var marketMultipliers = map[types.RiskLevel]float64{
	types.RiskVeryLow:  0.5,
	types.RiskLow:      0.7,
	types.RiskMedium:   1.0,
	types.RiskHigh:     1.5,
	types.RiskVeryHigh: 2.0,
}

// Assessor 基于敞口与市场波动水平计算风险分。无状态、可并发使用。
type Assessor struct{}

func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess computes the exposure ratio, applies the volatility multiplier,
// and buckets the adjusted score into a risk level.
func (a *Assessor) Assess(req types.DecisionRequest, mkt types.MarketContext) Assessment {
	exposure := 0.0
	if req.AvailableCapital > 0 {
		exposure = req.PositionValue / req.AvailableCapital
	}
	if exposure > 1 {
		exposure = 1
	}
	if exposure < 0 {
		exposure = 0
	}

	multiplier, ok := marketMultipliers[mkt.Volatility]
	if !ok {
		multiplier = 1.0
	}
	adjusted := exposure * multiplier
	if adjusted > 1 {
		adjusted = 1
	}

	return Assessment{
		Symbol:        types.NormalizeSymbol(req.Symbol),
		ExposureRatio: exposure,
		PositionRisk:  adjusted,
		Level:         bucket(adjusted),
		Score:         adjusted,
	}
}

func bucket(score float64) types.RiskLevel {
	switch {
	case score < lowBound:
		return types.RiskLow
	case score < mediumBound:
		return types.RiskMedium
	case score < highBound:
		return types.RiskHigh
	default:
		return types.RiskVeryHigh
	}
}
