package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"verdict/internal/analysis/indicator"
	"verdict/internal/types"
)

func risingCandles(n int) []types.Candle {
	out := make([]types.Candle, n)
	base := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	price := 100.0
	for i := range out {
		price += 0.5
		out[i] = types.Candle{
			OpenTime: base.Add(time.Duration(i) * time.Minute),
			Open:     price - 0.5,
			High:     price + 0.2,
			Low:      price - 0.7,
			Close:    price,
			Volume:   10_000,
		}
	}
	return out
}

func TestTechnicalProducer_Produce(t *testing.T) {
	producer := NewTechnicalProducer(indicator.Settings{}, 15*time.Minute)
	now := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)

	signals, err := producer.Produce("acme", risingCandles(80), now)
	assert.NoError(t, err)
	assert.Len(t, signals, 2)

	// a strictly rising series is overbought on RSI and bullish on the EMA spread
	rsi := signals[0]
	assert.Equal(t, "ACME", rsi.Symbol)
	assert.Equal(t, SourceTechnicalAnalysis, rsi.Source)
	assert.Equal(t, TypeSell, rsi.Type)
	assert.InDelta(t, 0.7, rsi.Confidence, 1e-9)

	ema := signals[1]
	assert.Equal(t, TypeBuy, ema.Type)
	assert.Greater(t, ema.Strength, 0.0)
	assert.NotNil(t, ema.ExpiresAt)
	assert.Equal(t, now.Add(15*time.Minute), *ema.ExpiresAt)
}

func TestTechnicalProducer_NoCandles(t *testing.T) {
	producer := NewTechnicalProducer(indicator.Settings{}, 0)

	_, err := producer.Produce("ACME", nil, time.Now())
	assert.Error(t, err)
}
