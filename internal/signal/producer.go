package signal

import (
	"fmt"
	"time"

	"verdict/internal/analysis/indicator"
	"verdict/internal/types"
)

// TechnicalProducer 参考实现：把指标报告转成类型化信号。
// 引擎本身只消费 Signal；这里给上游采集方提供一个开箱即用的生产者。
type TechnicalProducer struct {
	settings indicator.Settings
	ttl      time.Duration
}

// NewTechnicalProducer builds a producer; ttl <= 0 disables signal expiry.
func NewTechnicalProducer(settings indicator.Settings, ttl time.Duration) *TechnicalProducer {
	return &TechnicalProducer{settings: settings, ttl: ttl}
}

// Produce derives BUY/SELL/HOLD signals from RSI and EMA cross state.
func (p *TechnicalProducer) Produce(symbol string, candles []types.Candle, now time.Time) ([]Signal, error) {
	cfg := p.settings
	cfg.Symbol = symbol
	rep, err := indicator.Compute(candles, cfg)
	if err != nil {
		return nil, fmt.Errorf("computing indicators failed: %w", err)
	}

	var out []Signal
	if rsi, ok := rep.Values["rsi"]; ok {
		sig := p.base(rep.Symbol, "rsi", now)
		switch rsi.State {
		case "oversold":
			sig.Type = TypeBuy
			sig.Strength = clamp01((30 - rsi.Latest) / 30)
			sig.Confidence = 0.7
		case "overbought":
			sig.Type = TypeSell
			sig.Strength = clamp01((rsi.Latest - 70) / 30)
			sig.Confidence = 0.7
		default:
			sig.Type = TypeHold
			sig.Confidence = 0.4
		}
		out = append(out, sig)
	}

	fast, okFast := rep.Values["ema_fast"]
	slow, okSlow := rep.Values["ema_slow"]
	if okFast && okSlow && fast.Latest > 0 && slow.Latest > 0 {
		sig := p.base(rep.Symbol, "ema", now)
		spread := (fast.Latest - slow.Latest) / slow.Latest
		switch {
		case spread > 0:
			sig.Type = TypeBuy
		case spread < 0:
			sig.Type = TypeSell
			spread = -spread
		default:
			sig.Type = TypeHold
		}
		// 10% spread saturates the strength scale.
		sig.Strength = clamp01(spread * 10)
		sig.Confidence = 0.5
		out = append(out, sig)
	}
	return out, nil
}

func (p *TechnicalProducer) base(symbol, kind string, now time.Time) Signal {
	sig := Signal{
		ID:          fmt.Sprintf("ta-%s-%s-%d", symbol, kind, now.UnixMilli()),
		Symbol:      symbol,
		Source:      SourceTechnicalAnalysis,
		Type:        TypeHold,
		GeneratedAt: now,
	}
	if p.ttl > 0 {
		exp := now.Add(p.ttl)
		sig.ExpiresAt = &exp
	}
	return sig
}
