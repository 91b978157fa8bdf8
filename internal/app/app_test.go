package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	vcfg "verdict/internal/config"
	"verdict/internal/signal"
	"verdict/internal/types"
)

func testConfig(t *testing.T) *vcfg.Config {
	t.Helper()
	dir := t.TempDir()
	return &vcfg.Config{
		App: vcfg.AppConfig{Env: "test", LogLevel: "error", HTTPAddr: ":0"},
		Engine: vcfg.EngineConfig{
			Weights:        vcfg.WeightsConfig{Technical: 0.4, Prediction: 0.3, Sentiment: 0.2, Risk: 0.1, Fallback: 0.1},
			MaxPositionPct: 0.05,
			LotSize:        100,
			HistoryLimit:   100,
		},
		Store: vcfg.StoreConfig{
			DecisionLogPath: filepath.Join(dir, "decisions.db"),
			RuleDBPath:      filepath.Join(dir, "rules.db"),
		},
		Market: vcfg.MarketConfig{AvgVolumes: map[string]float64{"ACME": 500_000}},
	}
}

func TestAppBuilder_Build(t *testing.T) {
	cfg := testConfig(t)
	application, err := NewAppBuilder(cfg).Build(context.Background())
	assert.NoError(t, err)
	defer application.Close()

	engine := application.Engine()
	assert.NotNil(t, engine)
	assert.Len(t, engine.ListActiveRules(), 3, "empty rule db seeds the built-in defaults")

	d, err := engine.ProcessDecision(context.Background(), types.DecisionRequest{
		Symbol: "ACME", CurrentPrice: 50, AvailableCapital: 100_000,
	}, []signal.Signal{
		{ID: "sig-1", Symbol: "ACME", Source: signal.SourceTechnicalAnalysis, Type: signal.TypeBuy, Strength: 0.7, Confidence: 0.8},
	}, types.MarketContext{
		Condition: types.BullMarket, Volatility: types.RiskMedium, Session: types.SessionMorning,
	})
	assert.NoError(t, err)
	assert.Equal(t, signal.TypeBuy, d.Type)
	assert.EqualValues(t, 100, d.Quantity)
}

func TestAppBuilder_PersistedRulesSurviveRestart(t *testing.T) {
	cfg := testConfig(t)

	first, err := NewAppBuilder(cfg).Build(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, first.Engine().SetRuleEnabled("default-trading-hours", false))
	first.Close()

	second, err := NewAppBuilder(cfg).Build(context.Background())
	assert.NoError(t, err)
	defer second.Close()

	for _, r := range second.Engine().ListActiveRules() {
		if r.ID == "default-trading-hours" {
			assert.False(t, r.Enabled, "disabled flag persisted across restarts")
			return
		}
	}
	t.Fatal("default-trading-hours missing after restart")
}

func TestAppBuilder_WithoutPersistence(t *testing.T) {
	cfg := testConfig(t)
	application, err := NewAppBuilder(cfg, WithoutPersistence()).Build(context.Background())
	assert.NoError(t, err)
	defer application.Close()

	assert.Len(t, application.Engine().ListActiveRules(), 3)
}

func TestAppBuilder_RuleFileTemplate(t *testing.T) {
	cfg := testConfig(t)
	cfg.Rules.Path = filepath.Join(t.TempDir(), "rules.yaml")

	t.Run("missing file without template flag", func(t *testing.T) {
		_, err := NewAppBuilder(cfg).Build(context.Background())
		assert.Error(t, err)
	})

	t.Run("template written and loaded", func(t *testing.T) {
		cfg.Rules.WriteTemplate = true
		application, err := NewAppBuilder(cfg).Build(context.Background())
		assert.NoError(t, err)
		defer application.Close()
		assert.Len(t, application.Engine().ListActiveRules(), 3)
	})
}

func TestNewApp_NilConfig(t *testing.T) {
	_, err := NewApp(nil)
	assert.Error(t, err)
}
