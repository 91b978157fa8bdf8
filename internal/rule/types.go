package rule

import (
	"encoding/json"
	"time"

	"verdict/internal/types"
)

// Type 规则类别，决定条件的解释方式。
type Type string

const (
	TypeRisk      Type = "risk"
	TypeTiming    Type = "timing"
	TypeLiquidity Type = "liquidity"
)

// Impact 规则命中后对决策的结构化影响。
// 闭合枚举，综合器的 switch 依赖其完备性。
type Impact int

const (
	ImpactNone Impact = iota
	ImpactBlockTrading
	ImpactReduceRisk
	ImpactReduceConfidence
)

func (i Impact) String() string {
	switch i {
	case ImpactNone:
		return "NONE"
	case ImpactBlockTrading:
		return "BLOCK_TRADING"
	case ImpactReduceRisk:
		return "REDUCE_RISK"
	case ImpactReduceConfidence:
		return "REDUCE_CONFIDENCE"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders the impact as its string tag.
func (i Impact) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

// UnmarshalJSON accepts the string tags produced by MarshalJSON.
func (i *Impact) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	switch tag {
	case "BLOCK_TRADING":
		*i = ImpactBlockTrading
	case "REDUCE_RISK":
		*i = ImpactReduceRisk
	case "REDUCE_CONFIDENCE":
		*i = ImpactReduceConfidence
	default:
		*i = ImpactNone
	}
	return nil
}

// Rule 单条交易规则。Conditions 保存为原始 JSON 对象，
// 由各类型的处理器按需取值（缺失字段走默认值）。
type Rule struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name,omitempty"`
	Type       Type                    `json:"type"`
	Conditions json.RawMessage         `json:"conditions,omitempty"`
	Priority   int                     `json:"priority"`
	Enabled    bool                    `json:"enabled"`
	Symbols    []string                `json:"symbols,omitempty"`
	Sessions   []string                `json:"sessions,omitempty"`
	Markets    []types.MarketCondition `json:"markets,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`

	// Usage counters, maintained by the store after each evaluation.
	ExecutedCount int64 `json:"executed_count"`
	MatchedCount  int64 `json:"matched_count"`
}

// AppliesTo 先做适用性过滤：显式 allow-list 之外的请求直接跳过。
func (r Rule) AppliesTo(symbol, session string, condition types.MarketCondition) bool {
	if len(r.Symbols) > 0 && !containsFold(r.Symbols, symbol) {
		return false
	}
	if len(r.Sessions) > 0 && !containsFold(r.Sessions, session) {
		return false
	}
	if len(r.Markets) > 0 {
		found := false
		for _, m := range r.Markets {
			if m == condition {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsFold(list []string, want string) bool {
	want = types.NormalizeSymbol(want)
	for _, item := range list {
		if types.NormalizeSymbol(item) == want {
			return true
		}
	}
	return false
}

// ExecutionResult 每条规则每次请求产生一份，随决策的审计轨迹保留。
type ExecutionResult struct {
	RuleID        string        `json:"rule_id"`
	Symbol        string        `json:"symbol"`
	Executed      bool          `json:"executed"`
	ConditionsMet bool          `json:"conditions_met"`
	ActionsTaken  []string      `json:"actions_taken,omitempty"`
	Impact        Impact        `json:"decision_impact"`
	Errors        []string      `json:"errors,omitempty"`
	Elapsed       time.Duration `json:"execution_time"`
}
