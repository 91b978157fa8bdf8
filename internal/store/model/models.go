package model

import "gorm.io/datatypes"

// RuleModel 规则的持久化形态。Conditions/过滤列表存 JSON 列。
type RuleModel struct {
	ID            string         `gorm:"column:id;primaryKey"`
	Name          string         `gorm:"column:name"`
	Type          string         `gorm:"column:type"`
	Conditions    datatypes.JSON `gorm:"column:conditions"`
	Priority      int            `gorm:"column:priority"`
	Enabled       bool           `gorm:"column:enabled"`
	Symbols       datatypes.JSON `gorm:"column:symbols"`
	Sessions      datatypes.JSON `gorm:"column:sessions"`
	Markets       datatypes.JSON `gorm:"column:markets"`
	ExecutedCount int64          `gorm:"column:executed_count"`
	MatchedCount  int64          `gorm:"column:matched_count"`
	CreatedAtUnix int64          `gorm:"column:created_at"`
	UpdatedAtUnix int64          `gorm:"column:updated_at"`
}

// TableName 固定表名，避免 gorm 复数推断。
func (RuleModel) TableName() string { return "trading_rules" }
