package types

import "time"

// MarketCondition 描述当前市场的大环境标签。
type MarketCondition string

const (
	BullMarket       MarketCondition = "BULL_MARKET"
	BearMarket       MarketCondition = "BEAR_MARKET"
	SidewaysMarket   MarketCondition = "SIDEWAYS"
	VolatileMarket   MarketCondition = "VOLATILE"
	UnknownCondition MarketCondition = "UNKNOWN"
)

// RiskLevel 五档风险等级，供风险评估与市场波动标签共用。
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "VERY_LOW"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
)

// Trading session tags carried by MarketContext.
const (
	SessionMorning   = "MORNING"
	SessionAfternoon = "AFTERNOON"
	SessionClosed    = "CLOSED"
)

// MarketContext 每个决策周期注入一次的市场快照，进入引擎后只读。
type MarketContext struct {
	Condition  MarketCondition `json:"condition"`
	Volatility RiskLevel       `json:"volatility_level"`
	Session    string          `json:"current_session"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Candle 单根 K 线，供技术信号生产者消费。
type Candle struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}
