package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"verdict/internal/analysis/indicator"
	vcfg "verdict/internal/config"
	"verdict/internal/decision"
	"verdict/internal/logger"
	"verdict/internal/risk"
	"verdict/internal/rule"
	"verdict/internal/signal"
	"verdict/internal/store/decisionlog"
	"verdict/internal/store/gormstore"
	enginehttp "verdict/internal/transport/http"
)

// AppBuilder 按配置装配引擎与外围依赖；
// fn 成员可在测试里替换为内存实现。
type AppBuilder struct {
	cfg *vcfg.Config

	ruleStoreFn   func(string) (*gormstore.RuleStore, error)
	decisionLogFn func(string) (*decisionlog.Store, error)
	registryFn    func(string, *rule.Store) (*rule.Registry, error)
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *vcfg.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:           cfg,
		ruleStoreFn:   gormstore.NewRuleStore,
		decisionLogFn: decisionlog.New,
		registryFn:    rule.NewRegistry,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// WithoutPersistence 关闭 SQLite 落盘（测试与一次性运行）。
func WithoutPersistence() AppBuilderOption {
	return func(b *AppBuilder) {
		b.ruleStoreFn = nil
		b.decisionLogFn = nil
	}
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	a := &App{cfg: cfg}

	ruleStore, err := b.buildRuleStore(cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	registry, err := b.buildRegistry(cfg, ruleStore)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.registry = registry

	weights := signal.Weights{
		Technical:  cfg.Engine.Weights.Technical,
		Prediction: cfg.Engine.Weights.Prediction,
		Sentiment:  cfg.Engine.Weights.Sentiment,
		Risk:       cfg.Engine.Weights.Risk,
		Fallback:   cfg.Engine.Weights.Fallback,
	}
	sizing := decision.SizingConfig{
		MaxPositionRatio: cfg.Engine.MaxPositionPct,
		LotSize:          cfg.Engine.LotSize,
	}

	var logs *decisionlog.Store
	if b.decisionLogFn != nil {
		path := strings.TrimSpace(cfg.Store.DecisionLogPath)
		if path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				a.Close()
				return nil, fmt.Errorf("creating decision log dir failed: %w", err)
			}
			logs, err = b.decisionLogFn(path)
			if err != nil {
				a.Close()
				return nil, fmt.Errorf("opening decision log failed: %w", err)
			}
			a.logs = logs
		}
	}

	var audit decision.AuditSink
	if logs != nil {
		audit = logs
	}
	engine := decision.NewEngine(decision.EngineParams{
		Aggregator:  signal.NewAggregator(weights),
		Evaluator:   rule.NewEvaluator(ruleStore, rule.StaticVolumes(cfg.Market.AvgVolumes)),
		Assessor:    risk.NewAssessor(),
		Synthesizer: decision.NewSynthesizer(sizing),
		Rules:       ruleStore,
		History:     decision.NewHistory(cfg.Engine.HistoryLimit),
		Audit:       audit,
	})
	a.engine = engine

	producer := signal.NewTechnicalProducer(indicator.Settings{
		EMA: indicator.EMASettings{Fast: 21, Slow: 50},
		RSI: indicator.RSISettings{Period: 14, Oversold: 30, Overbought: 70},
	}, 15*time.Minute)

	router := enginehttp.NewRouter(engine, logs, producer.Produce)
	server, err := enginehttp.NewServer(cfg.App.HTTPAddr, router)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.server = server
	return a, nil
}

// buildRuleStore 装配规则集合：优先加载落盘规则，空库时写入内置默认规则。
func (b *AppBuilder) buildRuleStore(cfg *vcfg.Config, a *App) (*rule.Store, error) {
	var persister rule.Persister
	if b.ruleStoreFn != nil {
		path := strings.TrimSpace(cfg.Store.RuleDBPath)
		if path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("creating rule db dir failed: %w", err)
			}
			gs, err := b.ruleStoreFn(path)
			if err != nil {
				return nil, fmt.Errorf("opening rule db failed: %w", err)
			}
			a.ruleDB = gs
			persister = gs
		}
	}

	store := rule.NewStore(persister)
	if a.ruleDB != nil {
		persisted, err := a.ruleDB.LoadRules()
		if err != nil {
			return nil, fmt.Errorf("loading persisted rules failed: %w", err)
		}
		if len(persisted) > 0 {
			store.Replace(persisted)
			logger.Infof("✓ 已从 %s 加载 %d 条规则", cfg.Store.RuleDBPath, len(persisted))
			return store, nil
		}
	}
	for _, r := range rule.DefaultRules() {
		if _, err := store.Create(r); err != nil {
			return nil, fmt.Errorf("seeding default rule %s failed: %w", r.ID, err)
		}
	}
	logger.Infof("✓ 已加载 %d 条内置默认规则", store.Len())
	return store, nil
}

// buildRegistry 可选地启用规则文件热加载。
func (b *AppBuilder) buildRegistry(cfg *vcfg.Config, store *rule.Store) (*rule.Registry, error) {
	path := strings.TrimSpace(cfg.Rules.Path)
	if path == "" || b.registryFn == nil {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if !cfg.Rules.WriteTemplate {
			return nil, fmt.Errorf("rule file not found: %s", path)
		}
		if err := rule.WriteTemplate(path); err != nil {
			return nil, fmt.Errorf("writing rule template failed: %w", err)
		}
		logger.Infof("✓ 已写出规则模板: %s", path)
	}
	registry, err := b.registryFn(path, store)
	if err != nil {
		return nil, err
	}
	version, loadedAt := registry.Version()
	logger.Infof("✓ 规则文件已加载 (version=%d, at=%s)", version, loadedAt.Format(time.RFC3339))
	return registry, nil
}
