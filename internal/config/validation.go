package config

import "fmt"

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.Engine.validate(); err != nil {
		return err
	}
	if err := c.Market.validate(); err != nil {
		return err
	}
	return nil
}

func (e *EngineConfig) validate() error {
	if e.MaxPositionPct <= 0 || e.MaxPositionPct > 1 {
		return fmt.Errorf("engine.max_position_pct must be in (0, 1]")
	}
	if e.LotSize <= 0 {
		return fmt.Errorf("engine.lot_size must be positive")
	}
	if e.HistoryLimit <= 0 {
		return fmt.Errorf("engine.history_limit must be positive")
	}
	return e.Weights.validate()
}

func (w *WeightsConfig) validate() error {
	for name, v := range map[string]float64{
		"technical":  w.Technical,
		"prediction": w.Prediction,
		"sentiment":  w.Sentiment,
		"risk":       w.Risk,
		"fallback":   w.Fallback,
	} {
		if v < 0 {
			return fmt.Errorf("engine.weights.%s cannot be negative", name)
		}
	}
	if w.Technical+w.Prediction+w.Sentiment+w.Risk <= 0 {
		return fmt.Errorf("engine.weights must have at least one positive source weight")
	}
	return nil
}

func (m *MarketConfig) validate() error {
	for symbol, vol := range m.AvgVolumes {
		if vol < 0 {
			return fmt.Errorf("market.avg_volumes.%s cannot be negative", symbol)
		}
	}
	return nil
}
