package types

import (
	"strings"
	"time"
)

// DecisionRequest 一次决策请求携带的账户与标的上下文。
// 价格与资金均为请求方提前拉取的快照，引擎内不做任何 I/O。
type DecisionRequest struct {
	Symbol           string    `json:"symbol"`
	CurrentPrice     float64   `json:"current_price"`
	PositionValue    float64   `json:"position_value"`
	AvailableCapital float64   `json:"available_capital"`
	MaxPositionValue float64   `json:"max_position_value,omitempty"`
	RequestedAt      time.Time `json:"requested_at,omitempty"`
}

// NormalizeSymbol trims and upper-cases an equity symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
