package rule

import (
	"fmt"
	"time"

	"verdict/internal/types"
)

// Evaluator 对活动规则集执行一轮评估。
// 规则执行互不依赖；一条规则内部的故障被吸收进该条结果，
// 绝不中断其余规则的评估。
type Evaluator struct {
	store   *Store
	volumes VolumeSource
}

// NewEvaluator builds an evaluator; volumes may be nil (placeholder figures apply).
func NewEvaluator(store *Store, volumes VolumeSource) *Evaluator {
	return &Evaluator{store: store, volumes: volumes}
}

// Evaluate runs every enabled, applicable rule against the request.
// Results follow the snapshot order (priority-descending).
func (e *Evaluator) Evaluate(req types.DecisionRequest, mkt types.MarketContext) []ExecutionResult {
	rules := e.store.Snapshot()
	results := make([]ExecutionResult, 0, len(rules))
	symbol := types.NormalizeSymbol(req.Symbol)
	for _, r := range rules {
		if !r.AppliesTo(symbol, mkt.Session, mkt.Condition) {
			continue
		}
		results = append(results, e.execute(r, req, mkt, symbol))
	}
	e.store.RecordExecution(results)
	return results
}

func (e *Evaluator) execute(r Rule, req types.DecisionRequest, mkt types.MarketContext, symbol string) (res ExecutionResult) {
	start := time.Now()
	res = ExecutionResult{RuleID: r.ID, Symbol: symbol, Executed: true}
	defer func() {
		if rec := recover(); rec != nil {
			res.Executed = false
			res.Impact = ImpactNone
			res.Errors = append(res.Errors, fmt.Sprintf("rule handler panic: %v", rec))
		}
		res.Elapsed = time.Since(start)
	}()

	switch r.Type {
	case TypeRisk:
		evalRisk(r, req, &res)
	case TypeTiming:
		evalTiming(r, mkt, &res)
	case TypeLiquidity:
		evalLiquidity(r, req, e.volumes, &res)
	default:
		res.Executed = false
		res.Errors = append(res.Errors, fmt.Sprintf("unknown rule type: %s", r.Type))
	}
	return res
}
