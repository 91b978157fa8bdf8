package gormstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"verdict/internal/rule"
	storemodel "verdict/internal/store/model"
	"verdict/internal/types"
)

// RuleStore 用 Gorm + SQLite 持久化规则集合，实现 rule.Persister。
type RuleStore struct {
	db *gorm.DB
}

// NewRuleStore initializes the rule database and runs migrations.
func NewRuleStore(path string) (*RuleStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("rule store path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&storemodel.RuleModel{}); err != nil {
		return nil, fmt.Errorf("migrating rule store failed: %w", err)
	}
	return &RuleStore{db: db}, nil
}

// LoadRules returns every persisted rule.
func (s *RuleStore) LoadRules() ([]rule.Rule, error) {
	var models []storemodel.RuleModel
	if err := s.db.Order("priority DESC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("loading rules failed: %w", err)
	}
	out := make([]rule.Rule, 0, len(models))
	for _, m := range models {
		r, err := toRule(m)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// SaveRule upserts one rule.
func (s *RuleStore) SaveRule(r rule.Rule) error {
	m, err := toModel(r)
	if err != nil {
		return err
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("saving rule %s failed: %w", r.ID, err)
	}
	return nil
}

// SaveEnabled updates only the enabled flag.
func (s *RuleStore) SaveEnabled(id string, enabled bool) error {
	res := s.db.Model(&storemodel.RuleModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"enabled": enabled, "updated_at": time.Now().Unix()})
	if res.Error != nil {
		return fmt.Errorf("updating enabled flag failed: %w", res.Error)
	}
	return nil
}

// SaveCounters updates the usage counters.
func (s *RuleStore) SaveCounters(id string, executed, matched int64) error {
	res := s.db.Model(&storemodel.RuleModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"executed_count": executed,
			"matched_count":  matched,
			"updated_at":     time.Now().Unix(),
		})
	if res.Error != nil {
		return fmt.Errorf("updating counters failed: %w", res.Error)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *RuleStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toModel(r rule.Rule) (storemodel.RuleModel, error) {
	symbols, err := json.Marshal(r.Symbols)
	if err != nil {
		return storemodel.RuleModel{}, err
	}
	sessions, err := json.Marshal(r.Sessions)
	if err != nil {
		return storemodel.RuleModel{}, err
	}
	markets, err := json.Marshal(r.Markets)
	if err != nil {
		return storemodel.RuleModel{}, err
	}
	conditions := r.Conditions
	if len(conditions) == 0 {
		conditions = json.RawMessage(`{}`)
	}
	now := time.Now().Unix()
	return storemodel.RuleModel{
		ID:            r.ID,
		Name:          r.Name,
		Type:          string(r.Type),
		Conditions:    datatypes.JSON(conditions),
		Priority:      r.Priority,
		Enabled:       r.Enabled,
		Symbols:       datatypes.JSON(symbols),
		Sessions:      datatypes.JSON(sessions),
		Markets:       datatypes.JSON(markets),
		ExecutedCount: r.ExecutedCount,
		MatchedCount:  r.MatchedCount,
		CreatedAtUnix: r.CreatedAt.Unix(),
		UpdatedAtUnix: now,
	}, nil
}

func toRule(m storemodel.RuleModel) (rule.Rule, error) {
	r := rule.Rule{
		ID:            m.ID,
		Name:          m.Name,
		Type:          rule.Type(m.Type),
		Conditions:    json.RawMessage(m.Conditions),
		Priority:      m.Priority,
		Enabled:       m.Enabled,
		ExecutedCount: m.ExecutedCount,
		MatchedCount:  m.MatchedCount,
		CreatedAt:     time.Unix(m.CreatedAtUnix, 0),
	}
	if len(m.Symbols) > 0 {
		if err := json.Unmarshal(m.Symbols, &r.Symbols); err != nil {
			return rule.Rule{}, fmt.Errorf("decoding symbols for %s failed: %w", m.ID, err)
		}
	}
	if len(m.Sessions) > 0 {
		if err := json.Unmarshal(m.Sessions, &r.Sessions); err != nil {
			return rule.Rule{}, fmt.Errorf("decoding sessions for %s failed: %w", m.ID, err)
		}
	}
	if len(m.Markets) > 0 {
		var markets []types.MarketCondition
		if err := json.Unmarshal(m.Markets, &markets); err != nil {
			return rule.Rule{}, fmt.Errorf("decoding markets for %s failed: %w", m.ID, err)
		}
		r.Markets = markets
	}
	return r, nil
}
