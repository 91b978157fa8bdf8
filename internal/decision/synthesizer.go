package decision

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"verdict/internal/pkg/trading"
	"verdict/internal/risk"
	"verdict/internal/rule"
	"verdict/internal/signal"
	"verdict/internal/types"
)

// Confidence penalty compounded once per REDUCE_CONFIDENCE rule hit.
const confidencePenalty = 0.8

// SizingConfig 仓位计算参数。
type SizingConfig struct {
	// MaxPositionRatio 单笔决策最多动用的可用资金比例。
	MaxPositionRatio float64
	// LotSize 最小成交股数单位，数量向下取整到其整数倍。
	LotSize int64
}

// DefaultSizing 默认 5% 资金、100 股一手。
func DefaultSizing() SizingConfig {
	return SizingConfig{MaxPositionRatio: 0.05, LotSize: 100}
}

// Synthesizer 把聚合信号、规则结果与风险评估合成最终决策。
// 阻断规则优先于其余全部逻辑。
type Synthesizer struct {
	sizing SizingConfig
}

func NewSynthesizer(sizing SizingConfig) *Synthesizer {
	if sizing.MaxPositionRatio <= 0 {
		sizing.MaxPositionRatio = DefaultSizing().MaxPositionRatio
	}
	if sizing.LotSize <= 0 {
		sizing.LotSize = DefaultSizing().LotSize
	}
	return &Synthesizer{sizing: sizing}
}

// Synthesize combines the component outputs into one TradingDecision.
// Identical inputs produce identical decisions apart from ID and CreatedAt.
func (s *Synthesizer) Synthesize(
	req types.DecisionRequest,
	agg signal.Aggregated,
	results []rule.ExecutionResult,
	assessment risk.Assessment,
	mkt types.MarketContext,
) Decision {
	d := Decision{
		ID:                  "dec-" + uuid.NewString(),
		Symbol:              types.NormalizeSymbol(req.Symbol),
		Price:               req.CurrentPrice,
		RiskLevel:           assessment.Level,
		RiskScore:           assessment.Score,
		SupportingSignalIDs: agg.SignalIDs,
		MarketCondition:     mkt.Condition,
		RuleResults:         results,
		CreatedAt:           time.Now(),
	}

	if blocking := blockingRuleIDs(results); len(blocking) > 0 {
		d.Type = signal.TypeHold
		d.ConfidenceScore = 1.0
		d.ConfidenceLevel = ConfidenceVeryHigh
		d.RecommendedAction = fmt.Sprintf("Hold %s: trading blocked", d.Symbol)
		d.Reasoning = fmt.Sprintf("trading blocked by rules: %s", strings.Join(blocking, ", "))
		return d
	}

	confidence := agg.Confidence
	for _, res := range results {
		if res.ConditionsMet && res.Impact == rule.ImpactReduceConfidence {
			confidence *= confidencePenalty
		}
	}
	d.Type = agg.Type
	d.ConfidenceScore = confidence
	d.ConfidenceLevel = bucketConfidence(confidence)
	d.Quantity = s.quantity(req, agg.Type)
	d.RecommendedAction = recommendedAction(d)
	d.Reasoning = buildReasoning(agg, results, assessment, mkt)
	return d
}

// quantity sizes BUY orders only. SELL sizing needs current holdings, which
// the request does not carry; it stays with the portfolio service.
func (s *Synthesizer) quantity(req types.DecisionRequest, t signal.Type) int64 {
	if t != signal.TypeBuy {
		return 0
	}
	maxValue := trading.MaxPositionValue(req.AvailableCapital, s.sizing.MaxPositionRatio, req.MaxPositionValue)
	return trading.LotQuantity(maxValue, req.CurrentPrice, s.sizing.LotSize)
}

func blockingRuleIDs(results []rule.ExecutionResult) []string {
	var ids []string
	for _, res := range results {
		if res.ConditionsMet && res.Impact == rule.ImpactBlockTrading {
			ids = append(ids, res.RuleID)
		}
	}
	return ids
}

func recommendedAction(d Decision) string {
	switch d.Type {
	case signal.TypeBuy:
		if d.Quantity > 0 {
			return fmt.Sprintf("Buy %d shares of %s", d.Quantity, d.Symbol)
		}
		return fmt.Sprintf("Buy signal on %s below lot size, no order", d.Symbol)
	case signal.TypeSell:
		return fmt.Sprintf("Sell %s (quantity per portfolio service)", d.Symbol)
	default:
		return fmt.Sprintf("Hold %s", d.Symbol)
	}
}

// buildReasoning assembles the deterministic human-readable audit trace.
func buildReasoning(
	agg signal.Aggregated,
	results []rule.ExecutionResult,
	assessment risk.Assessment,
	mkt types.MarketContext,
) string {
	var b strings.Builder
	fmt.Fprintf(&b, "signal %s strength %.2f confidence %.2f (%d buy / %d sell / %d hold)",
		agg.Type, agg.Strength, agg.Confidence, agg.BuyCount, agg.SellCount, agg.HoldCount)
	fmt.Fprintf(&b, "; market %s session %s", mkt.Condition, mkt.Session)
	fmt.Fprintf(&b, "; risk %s score %.2f", assessment.Level, assessment.Score)
	var met []string
	for _, res := range results {
		if res.ConditionsMet {
			met = append(met, fmt.Sprintf("%s(%s)", res.RuleID, res.Impact))
		}
	}
	if len(met) > 0 {
		fmt.Fprintf(&b, "; rules met: %s", strings.Join(met, ", "))
	}
	return b.String()
}
