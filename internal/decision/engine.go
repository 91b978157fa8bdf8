package decision

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"verdict/internal/logger"
	"verdict/internal/risk"
	"verdict/internal/rule"
	"verdict/internal/signal"
	"verdict/internal/types"
)

// AuditSink 决策落库接口；为 nil 时只保留内存历史。
type AuditSink interface {
	RecordDecision(ctx context.Context, d Decision) error
}

// EngineParams 组装引擎的依赖。
type EngineParams struct {
	Aggregator  *signal.Aggregator
	Evaluator   *rule.Evaluator
	Assessor    *risk.Assessor
	Synthesizer *Synthesizer
	Rules       *rule.Store
	History     *History
	Audit       AuditSink
}

// Engine 决策编排器：持有活动规则集与决策历史，
// 按请求串起聚合、规则评估、风险评估与合成。
type Engine struct {
	aggregator  *signal.Aggregator
	evaluator   *rule.Evaluator
	assessor    *risk.Assessor
	synthesizer *Synthesizer
	rules       *rule.Store
	history     *History
	audit       AuditSink
}

func NewEngine(p EngineParams) *Engine {
	if p.Aggregator == nil {
		p.Aggregator = signal.NewAggregator(signal.DefaultWeights())
	}
	if p.Rules == nil {
		p.Rules = rule.NewStore(nil)
	}
	if p.Evaluator == nil {
		p.Evaluator = rule.NewEvaluator(p.Rules, nil)
	}
	if p.Assessor == nil {
		p.Assessor = risk.NewAssessor()
	}
	if p.Synthesizer == nil {
		p.Synthesizer = NewSynthesizer(DefaultSizing())
	}
	if p.History == nil {
		p.History = NewHistory(0)
	}
	return &Engine{
		aggregator:  p.Aggregator,
		evaluator:   p.Evaluator,
		assessor:    p.Assessor,
		synthesizer: p.Synthesizer,
		rules:       p.Rules,
		history:     p.History,
		audit:       p.Audit,
	}
}

// ProcessDecision runs one full decision cycle. Aggregation, rule evaluation
// and risk assessment are independent and run concurrently, joining before
// synthesis. A failed request never yields a partial decision.
func (e *Engine) ProcessDecision(
	ctx context.Context,
	req types.DecisionRequest,
	signals []signal.Signal,
	mkt types.MarketContext,
) (Decision, error) {
	if err := ValidateRequest(req); err != nil {
		return Decision{}, err
	}
	req.Symbol = types.NormalizeSymbol(req.Symbol)
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now()
	}
	start := time.Now()
	live := liveSignals(req.Symbol, signals, start)

	var (
		agg        signal.Aggregated
		results    []rule.ExecutionResult
		assessment risk.Assessment
	)
	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		return capturePanic("aggregation", func() {
			agg = e.aggregator.Aggregate(req.Symbol, live)
		})
	})
	group.Go(func() error {
		// Per-rule faults are already absorbed inside the evaluator.
		return capturePanic("rule evaluation", func() {
			results = e.evaluator.Evaluate(req, mkt)
		})
	})
	group.Go(func() error {
		return capturePanic("risk assessment", func() {
			assessment = e.assessor.Assess(req, mkt)
		})
	})
	if err := group.Wait(); err != nil {
		return Decision{}, err
	}

	var d Decision
	if err := capturePanic("synthesis", func() {
		d = e.synthesizer.Synthesize(req, agg, results, assessment, mkt)
	}); err != nil {
		return Decision{}, err
	}

	e.history.Append(d)
	if e.audit != nil {
		if err := e.audit.RecordDecision(ctx, d); err != nil {
			logger.Warnf("recording decision %s failed: %v", d.ID, err)
		}
	}
	logger.Infof("decision %s symbol=%s type=%s confidence=%.2f risk=%s rules=%d dur=%s",
		d.ID, d.Symbol, d.Type, d.ConfidenceScore, d.RiskLevel, len(results), time.Since(start))
	return d, nil
}

// liveSignals keeps signals for the requested symbol that have not expired.
func liveSignals(symbol string, signals []signal.Signal, now time.Time) []signal.Signal {
	out := make([]signal.Signal, 0, len(signals))
	for _, s := range signals {
		if s.Expired(now) {
			continue
		}
		if sym := types.NormalizeSymbol(s.Symbol); sym != "" && sym != symbol {
			continue
		}
		out = append(out, s)
	}
	return out
}

func capturePanic(stage string, fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &ProcessingError{Stage: stage, Err: fmt.Errorf("%v", rec)}
		}
	}()
	fn()
	return nil
}

// ListActiveRules returns the rule collection, priority-descending.
func (e *Engine) ListActiveRules() []rule.Rule {
	return e.rules.List()
}

// SetRuleEnabled toggles a rule; unknown ids yield rule.ErrNotFound.
func (e *Engine) SetRuleEnabled(id string, enabled bool) error {
	if err := e.rules.SetEnabled(id, enabled); err != nil {
		return err
	}
	logger.Infof("rule %s enabled=%v", id, enabled)
	return nil
}

// CreateRule validates conditions against the type schema and inserts.
func (e *Engine) CreateRule(r rule.Rule) (rule.Rule, error) {
	if err := rule.ValidateConditions(r.Type, r.Conditions); err != nil {
		return rule.Rule{}, err
	}
	created, err := e.rules.Create(r)
	if err != nil {
		return rule.Rule{}, err
	}
	logger.Infof("rule %s created type=%s priority=%d", created.ID, created.Type, created.Priority)
	return created, nil
}

// History exposes the in-memory decision log.
func (e *Engine) History() *History {
	return e.history
}
