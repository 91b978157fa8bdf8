package rule

import (
	"fmt"

	"github.com/tidwall/gjson"

	"verdict/internal/types"
)

// Condition defaults applied when a rule omits the field.
const (
	defaultMaxExposure = 0.05
	defaultMinVolume   = 100_000
)

// VolumeSource 提供标的的平均成交量（流动性规则使用）。
type VolumeSource interface {
	AvgVolume(symbol string) (float64, bool)
}

// StaticVolumes 基于配置表的 VolumeSource 实现。
type StaticVolumes map[string]float64

func (v StaticVolumes) AvgVolume(symbol string) (float64, bool) {
	vol, ok := v[types.NormalizeSymbol(symbol)]
	return vol, ok
}

func evalRisk(r Rule, req types.DecisionRequest, res *ExecutionResult) {
	exposure := 0.0
	if req.AvailableCapital > 0 {
		exposure = req.PositionValue / req.AvailableCapital
	}
	maxExposure := gjson.GetBytes(r.Conditions, "max_position_exposure").Float()
	if maxExposure <= 0 {
		maxExposure = defaultMaxExposure
	}
	if exposure > maxExposure {
		res.ConditionsMet = true
		res.Impact = ImpactReduceRisk
		res.ActionsTaken = append(res.ActionsTaken,
			fmt.Sprintf("position exposure %.4f exceeds limit %.4f", exposure, maxExposure))
	}
}

func evalTiming(r Rule, mkt types.MarketContext, res *ExecutionResult) {
	allowed := gjson.GetBytes(r.Conditions, "allowed_sessions").Array()
	if len(allowed) == 0 {
		return
	}
	for _, s := range allowed {
		if types.NormalizeSymbol(s.String()) == types.NormalizeSymbol(mkt.Session) {
			return
		}
	}
	res.ConditionsMet = true
	res.Impact = ImpactBlockTrading
	res.ActionsTaken = append(res.ActionsTaken,
		fmt.Sprintf("session %s outside allowed trading sessions", mkt.Session))
}

func evalLiquidity(r Rule, req types.DecisionRequest, volumes VolumeSource, res *ExecutionResult) {
	minVolume := gjson.GetBytes(r.Conditions, "min_avg_volume").Float()
	if minVolume <= 0 {
		minVolume = defaultMinVolume
	}
	avg := float64(defaultMinVolume)
	if volumes != nil {
		if v, ok := volumes.AvgVolume(req.Symbol); ok {
			avg = v
		}
	}
	if avg < minVolume {
		res.ConditionsMet = true
		res.Impact = ImpactReduceConfidence
		res.ActionsTaken = append(res.ActionsTaken,
			fmt.Sprintf("average volume %.0f below minimum %.0f", avg, minVolume))
	}
}
