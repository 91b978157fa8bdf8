package config

import "strings"

// Config 是 Verdict 的主配置载体。
type Config struct {
	App    AppConfig    `toml:"app"`
	Engine EngineConfig `toml:"engine"`
	Rules  RulesConfig  `toml:"rules"`
	Store  StoreConfig  `toml:"store"`
	Market MarketConfig `toml:"market"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// EngineConfig 决策引擎的聚合权重与仓位参数。
type EngineConfig struct {
	Weights        WeightsConfig `toml:"weights"`
	MaxPositionPct float64       `toml:"max_position_pct"` // 单笔最大占用比例 0~1
	LotSize        int64         `toml:"lot_size"`         // 最小交易股数单位
	HistoryLimit   int           `toml:"history_limit"`    // 内存决策历史上限
}

// WeightsConfig 各信号来源的聚合权重。
type WeightsConfig struct {
	Technical  float64 `toml:"technical"`
	Prediction float64 `toml:"prediction"`
	Sentiment  float64 `toml:"sentiment"`
	Risk       float64 `toml:"risk"`
	Fallback   float64 `toml:"fallback"`
}

// RulesConfig 规则文件来源。Path 为空时使用内置默认规则。
type RulesConfig struct {
	Path          string `toml:"path"`
	WriteTemplate bool   `toml:"write_template"` // 文件缺失时写出模板
}

// StoreConfig SQLite 落盘路径。
type StoreConfig struct {
	DecisionLogPath string `toml:"decision_log_path"`
	RuleDBPath      string `toml:"rule_db_path"`
}

// MarketConfig 静态市场辅助数据（流动性规则的平均成交量表）。
type MarketConfig struct {
	AvgVolumes map[string]float64 `toml:"avg_volumes"`
}

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	_, ok := k[strings.ToLower(strings.TrimSpace(path))]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
