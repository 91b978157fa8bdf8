package indicator

import (
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"

	"verdict/internal/types"
)

// Settings 描述计算指标所需的最小配置。
type Settings struct {
	Symbol string
	EMA    EMASettings
	RSI    RSISettings
}

// EMASettings 描述 EMA 指标参数。
type EMASettings struct {
	Fast int `json:"fast,omitempty"`
	Slow int `json:"slow,omitempty"`
}

// RSISettings 描述 RSI 指标参数。
type RSISettings struct {
	Period     int     `json:"period,omitempty"`
	Oversold   float64 `json:"oversold,omitempty"`
	Overbought float64 `json:"overbought,omitempty"`
}

// Value 保存单个指标的最新值与状态。
type Value struct {
	Latest float64 `json:"latest"`
	State  string  `json:"state,omitempty"`
	Note   string  `json:"note,omitempty"`
}

// Report 汇总单个 symbol 的指标输出。
type Report struct {
	Symbol string           `json:"symbol"`
	Count  int              `json:"count"`
	Values map[string]Value `json:"values"`
}

// Compute 基于收盘价序列计算 RSI 与快慢 EMA。
func Compute(candles []types.Candle, cfg Settings) (Report, error) {
	rep := Report{
		Symbol: types.NormalizeSymbol(cfg.Symbol),
		Count:  len(candles),
		Values: make(map[string]Value),
	}
	if len(candles) == 0 {
		return rep, fmt.Errorf("no candles")
	}
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	if cfg.EMA.Fast <= 0 {
		cfg.EMA.Fast = 21
	}
	if cfg.EMA.Slow <= 0 {
		cfg.EMA.Slow = 50
	}
	lastClose := closes[len(closes)-1]
	emaFast := lastValid(sanitizeSeries(talib.Ema(closes, cfg.EMA.Fast)))
	emaSlow := lastValid(sanitizeSeries(talib.Ema(closes, cfg.EMA.Slow)))
	rep.Values["ema_fast"] = Value{
		Latest: emaFast,
		State:  relativeState(lastClose, emaFast),
		Note:   fmt.Sprintf("EMA%d vs price", cfg.EMA.Fast),
	}
	rep.Values["ema_slow"] = Value{
		Latest: emaSlow,
		State:  relativeState(lastClose, emaSlow),
		Note:   fmt.Sprintf("EMA%d vs price", cfg.EMA.Slow),
	}

	if cfg.RSI.Period <= 0 {
		cfg.RSI.Period = 14
	}
	if cfg.RSI.Overbought == 0 {
		cfg.RSI.Overbought = 70
	}
	if cfg.RSI.Oversold == 0 {
		cfg.RSI.Oversold = 30
	}
	rsiVal := lastValid(sanitizeSeries(talib.Rsi(closes, cfg.RSI.Period)))
	state := "neutral"
	switch {
	case rsiVal >= cfg.RSI.Overbought:
		state = "overbought"
	case rsiVal > 0 && rsiVal <= cfg.RSI.Oversold:
		state = "oversold"
	}
	rep.Values["rsi"] = Value{
		Latest: rsiVal,
		State:  state,
		Note:   fmt.Sprintf("period=%d thresholds=%.1f/%.1f", cfg.RSI.Period, cfg.RSI.Oversold, cfg.RSI.Overbought),
	}
	return rep, nil
}

func sanitizeSeries(series []float64) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i] != 0 {
			return series[i]
		}
	}
	return 0
}

func relativeState(price, ema float64) string {
	switch {
	case ema == 0:
		return "unknown"
	case price > ema:
		return "above"
	case price < ema:
		return "below"
	default:
		return "at"
	}
}
