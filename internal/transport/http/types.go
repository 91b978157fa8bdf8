package enginehttp

import (
	"verdict/internal/signal"
	"verdict/internal/types"
)

// DecisionRequestBody POST /api/decisions 的请求载体。
// 信号与市场上下文由调用方（采集协作者）预先取好一并提交。
type DecisionRequestBody struct {
	Request types.DecisionRequest `json:"request"`
	Signals []signal.Signal       `json:"signals"`
	Market  types.MarketContext   `json:"market_context"`
}

// TechnicalSignalsBody POST /api/signals/technical 的请求载体。
type TechnicalSignalsBody struct {
	Symbol  string         `json:"symbol"`
	Candles []types.Candle `json:"candles"`
}

type errorResponse struct {
	Error string `json:"error"`
}
