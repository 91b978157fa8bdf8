// Package trading provides trading calculation utilities.
package trading

import "github.com/shopspring/decimal"

// MaxPositionValue caps the sizing budget at ratio*capital, further reduced
// by the request-level cap when one is set.
func MaxPositionValue(capital, ratio, requestCap float64) float64 {
	if capital <= 0 || ratio <= 0 {
		return 0
	}
	value := decimal.NewFromFloat(capital).Mul(decimal.NewFromFloat(ratio))
	if requestCap > 0 {
		cap := decimal.NewFromFloat(requestCap)
		if cap.LessThan(value) {
			value = cap
		}
	}
	f, _ := value.Float64()
	return f
}

// LotQuantity converts a position budget into a share quantity, floored to
// the nearest multiple of lotSize. Decimal math avoids float division edge
// cases around exact lot boundaries.
func LotQuantity(maxValue, price float64, lotSize int64) int64 {
	if maxValue <= 0 || price <= 0 || lotSize <= 0 {
		return 0
	}
	qty := decimal.NewFromFloat(maxValue).Div(decimal.NewFromFloat(price)).IntPart()
	return qty - qty%lotSize
}
