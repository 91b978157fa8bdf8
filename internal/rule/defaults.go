package rule

import (
	"encoding/json"
	"time"
)

// DefaultRules 内置规则集，在未配置规则文件且无持久化记录时启用。
func DefaultRules() []Rule {
	now := time.Now()
	return []Rule{
		{
			ID:         "default-max-exposure",
			Name:       "Max position exposure",
			Type:       TypeRisk,
			Conditions: json.RawMessage(`{"max_position_exposure":0.05}`),
			Priority:   8,
			Enabled:    true,
			CreatedAt:  now,
		},
		{
			ID:         "default-trading-hours",
			Name:       "Trading hours only",
			Type:       TypeTiming,
			Conditions: json.RawMessage(`{"allowed_sessions":["MORNING","AFTERNOON"]}`),
			Priority:   10,
			Enabled:    true,
			CreatedAt:  now,
		},
		{
			ID:         "default-min-liquidity",
			Name:       "Minimum average volume",
			Type:       TypeLiquidity,
			Conditions: json.RawMessage(`{"min_avg_volume":100000}`),
			Priority:   4,
			Enabled:    true,
			CreatedAt:  now,
		},
	}
}
