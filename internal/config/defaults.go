package config

import "strings"

// 默认值常量
const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppHTTPAddr     = ":9985"
	defaultAppLogPath      = ""
	defaultMaxPositionPct  = 0.05
	defaultLotSize         = 100
	defaultHistoryLimit    = 1000
	defaultDecisionLogPath = "data/decisions.db"
	defaultRuleDBPath      = "data/rules.db"

	defaultWeightTechnical  = 0.4
	defaultWeightPrediction = 0.3
	defaultWeightSentiment  = 0.2
	defaultWeightRisk       = 0.1
	defaultWeightFallback   = 0.1
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Engine.applyDefaults(keys)
	c.Store.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		stringFieldDefault("app.log_path", &a.LogPath, defaultAppLogPath),
	)
}

func (e *EngineConfig) applyDefaults(keys keySet) {
	if e == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "engine.max_position_pct",
			need:  func() bool { return e.MaxPositionPct <= 0 },
			apply: func() { e.MaxPositionPct = defaultMaxPositionPct },
		},
		fieldDefault{
			key:   "engine.lot_size",
			need:  func() bool { return e.LotSize <= 0 },
			apply: func() { e.LotSize = defaultLotSize },
		},
		fieldDefault{
			key:   "engine.history_limit",
			need:  func() bool { return e.HistoryLimit <= 0 },
			apply: func() { e.HistoryLimit = defaultHistoryLimit },
		},
	)
	e.Weights.applyDefaults(keys)
}

func (w *WeightsConfig) applyDefaults(keys keySet) {
	if w == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "engine.weights.technical",
			need:  func() bool { return w.Technical <= 0 },
			apply: func() { w.Technical = defaultWeightTechnical },
		},
		fieldDefault{
			key:   "engine.weights.prediction",
			need:  func() bool { return w.Prediction <= 0 },
			apply: func() { w.Prediction = defaultWeightPrediction },
		},
		fieldDefault{
			key:   "engine.weights.sentiment",
			need:  func() bool { return w.Sentiment <= 0 },
			apply: func() { w.Sentiment = defaultWeightSentiment },
		},
		fieldDefault{
			key:   "engine.weights.risk",
			need:  func() bool { return w.Risk <= 0 },
			apply: func() { w.Risk = defaultWeightRisk },
		},
		fieldDefault{
			key:   "engine.weights.fallback",
			need:  func() bool { return w.Fallback <= 0 },
			apply: func() { w.Fallback = defaultWeightFallback },
		},
	)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("store.decision_log_path", &s.DecisionLogPath, defaultDecisionLogPath),
		stringFieldDefault("store.rule_db_path", &s.RuleDBPath, defaultRuleDBPath),
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
