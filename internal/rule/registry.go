package rule

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"verdict/internal/logger"
	"verdict/internal/types"
)

// Definition 规则文件中的单条规则声明。
type Definition struct {
	Name       string         `mapstructure:"name" yaml:"name"`
	Type       string         `mapstructure:"type" yaml:"type"`
	Priority   int            `mapstructure:"priority" yaml:"priority"`
	Enabled    *bool          `mapstructure:"enabled" yaml:"enabled"`
	Symbols    []string       `mapstructure:"symbols" yaml:"symbols"`
	Sessions   []string       `mapstructure:"sessions" yaml:"sessions"`
	Markets    []string       `mapstructure:"markets" yaml:"markets"`
	Conditions map[string]any `mapstructure:"conditions" yaml:"conditions"`
}

// FileConfig 映射规则文件的顶层结构。
type FileConfig struct {
	Rules map[string]Definition `mapstructure:"rules" yaml:"rules"`
}

// conditionSchemas 按规则类型校验 conditions 字段。
var conditionSchemas = map[Type]*jsonschema.Schema{
	TypeRisk: jsonschema.MustCompileString("risk.json", `{
		"type": "object",
		"properties": {
			"max_position_exposure": {"type": "number", "exclusiveMinimum": 0, "maximum": 1}
		},
		"additionalProperties": false
	}`),
	TypeTiming: jsonschema.MustCompileString("timing.json", `{
		"type": "object",
		"properties": {
			"allowed_sessions": {"type": "array", "items": {"type": "string"}, "minItems": 1}
		},
		"required": ["allowed_sessions"],
		"additionalProperties": false
	}`),
	TypeLiquidity: jsonschema.MustCompileString("liquidity.json", `{
		"type": "object",
		"properties": {
			"min_avg_volume": {"type": "number", "exclusiveMinimum": 0}
		},
		"additionalProperties": false
	}`),
}

// ValidateConditions 用类型对应的 schema 校验条件对象。
func ValidateConditions(ruleType Type, conditions json.RawMessage) error {
	schema, ok := conditionSchemas[ruleType]
	if !ok {
		return fmt.Errorf("no condition schema for rule type %q", ruleType)
	}
	if len(conditions) == 0 {
		conditions = json.RawMessage(`{}`)
	}
	var decoded any
	if err := json.Unmarshal(conditions, &decoded); err != nil {
		return fmt.Errorf("conditions are not valid json: %w", err)
	}
	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("conditions rejected by %s schema: %w", ruleType, err)
	}
	return nil
}

// WriteTemplate 将内置规则集写成规则文件模板，供运维起步修改。
// 目标文件已存在时不覆盖。
func WriteTemplate(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("template path cannot be empty")
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	fc := FileConfig{Rules: make(map[string]Definition, 3)}
	for _, r := range DefaultRules() {
		var conditions map[string]any
		if len(r.Conditions) > 0 {
			if err := json.Unmarshal(r.Conditions, &conditions); err != nil {
				return fmt.Errorf("encoding template conditions failed: %w", err)
			}
		}
		enabled := r.Enabled
		fc.Rules[r.ID] = Definition{
			Name:       r.Name,
			Type:       string(r.Type),
			Priority:   r.Priority,
			Enabled:    &enabled,
			Conditions: conditions,
		}
	}
	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("rendering rule template failed: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Registry 监听规则定义文件，热更新活动规则集合。
// 参考 viper WatchConfig + fsnotify 回调的常规用法。
type Registry struct {
	path  string
	v     *viper.Viper
	store *Store

	mu       sync.Mutex
	version  int64
	loadedAt time.Time
}

// NewRegistry 读取规则文件并开始监听变更。
func NewRegistry(path string, store *Store) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("rule registry requires a file path")
	}
	if store == nil {
		return nil, fmt.Errorf("rule registry requires a store")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading rule file failed: %w", err)
	}
	r := &Registry{path: path, v: v, store: store}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("rule file reload failed (%s): %v", evt.Name, err)
		}
	})
	v.WatchConfig()
	return r, nil
}

// Version 返回当前加载计数与时间。
func (r *Registry) Version() (int64, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version, r.loadedAt
}

func (r *Registry) reload() error {
	if err := r.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading rule file failed: %w", err)
	}
	var fc FileConfig
	if err := r.v.Unmarshal(&fc); err != nil {
		return fmt.Errorf("parsing rule file failed: %w", err)
	}

	ids := make([]string, 0, len(fc.Rules))
	for id := range fc.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rules := make([]Rule, 0, len(ids))
	for _, id := range ids {
		parsed, err := fc.Rules[id].toRule(id)
		if err != nil {
			// A single bad definition must not take down the whole set.
			logger.Warnf("skipping rule %s: %v", id, err)
			continue
		}
		rules = append(rules, parsed)
	}
	r.store.Replace(rules)

	r.mu.Lock()
	r.version++
	r.loadedAt = time.Now()
	version := r.version
	r.mu.Unlock()
	logger.Infof("rule registry loaded %d rules from %s (version %d)", len(rules), r.path, version)
	return nil
}

func (d Definition) toRule(id string) (Rule, error) {
	ruleType := Type(strings.ToLower(strings.TrimSpace(d.Type)))
	conditions, err := json.Marshal(d.Conditions)
	if err != nil {
		return Rule{}, fmt.Errorf("encoding conditions failed: %w", err)
	}
	if d.Conditions == nil {
		conditions = json.RawMessage(`{}`)
	}
	if err := ValidateConditions(ruleType, conditions); err != nil {
		return Rule{}, err
	}
	enabled := true
	if d.Enabled != nil {
		enabled = *d.Enabled
	}
	priority := d.Priority
	if priority <= 0 {
		priority = 5
	}
	if priority > 10 {
		priority = 10
	}
	markets := make([]types.MarketCondition, 0, len(d.Markets))
	for _, m := range d.Markets {
		markets = append(markets, types.MarketCondition(types.NormalizeSymbol(m)))
	}
	return Rule{
		ID:         id,
		Name:       d.Name,
		Type:       ruleType,
		Conditions: conditions,
		Priority:   priority,
		Enabled:    enabled,
		Symbols:    d.Symbols,
		Sessions:   d.Sessions,
		Markets:    markets,
		CreatedAt:  time.Now(),
	}, nil
}
