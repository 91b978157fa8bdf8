package decisionlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"verdict/internal/decision"
	"verdict/internal/signal"
	"verdict/internal/types"

	_ "modernc.org/sqlite"
)

// Store 决策审计库：每个返回的决策连同推理轨迹与规则结果落 SQLite。
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Query 决策查询过滤条件。
type Query struct {
	Symbol string
	Limit  int
}

// New 初始化 SQLite 审计库。
func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("decision log path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Close 关闭底层 DB。
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// RecordDecision persists one decision. Implements decision.AuditSink.
func (s *Store) RecordDecision(ctx context.Context, d decision.Decision) error {
	signalIDs, err := json.Marshal(d.SupportingSignalIDs)
	if err != nil {
		return fmt.Errorf("encoding signal ids failed: %w", err)
	}
	ruleResults, err := json.Marshal(d.RuleResults)
	if err != nil {
		return fmt.Errorf("encoding rule results failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("decision log store is closed")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decisions (
			id, symbol, decision_type, recommended_action, quantity, price,
			confidence_level, confidence_score, risk_level, risk_score,
			market_condition, reasoning, signal_ids, rule_results, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Symbol, string(d.Type), d.RecommendedAction, d.Quantity, d.Price,
		string(d.ConfidenceLevel), d.ConfidenceScore, string(d.RiskLevel), d.RiskScore,
		string(d.MarketCondition), d.Reasoning, string(signalIDs), string(ruleResults),
		d.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting decision failed: %w", err)
	}
	return nil
}

// ListDecisions returns persisted decisions, newest first.
func (s *Store) ListDecisions(ctx context.Context, q Query) ([]decision.Decision, error) {
	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
		SELECT id, symbol, decision_type, recommended_action, quantity, price,
		       confidence_level, confidence_score, risk_level, risk_score,
		       market_condition, reasoning, signal_ids, rule_results, created_at
		FROM decisions`
	args := []any{}
	if sym := types.NormalizeSymbol(q.Symbol); sym != "" {
		query += " WHERE symbol = ?"
		args = append(args, sym)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("decision log store is closed")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying decisions failed: %w", err)
	}
	defer rows.Close()

	var out []decision.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDecision looks up one decision by id.
func (s *Store) GetDecision(ctx context.Context, id string) (decision.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return decision.Decision{}, fmt.Errorf("decision log store is closed")
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, symbol, decision_type, recommended_action, quantity, price,
		       confidence_level, confidence_score, risk_level, risk_score,
		       market_condition, reasoning, signal_ids, rule_results, created_at
		FROM decisions WHERE id = ?`, strings.TrimSpace(id))
	return scanDecision(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (decision.Decision, error) {
	var (
		d               decision.Decision
		decisionType    string
		confidenceLevel string
		riskLevel       string
		marketCondition string
		signalIDs       string
		ruleResults     string
		createdAt       int64
	)
	err := row.Scan(
		&d.ID, &d.Symbol, &decisionType, &d.RecommendedAction, &d.Quantity, &d.Price,
		&confidenceLevel, &d.ConfidenceScore, &riskLevel, &d.RiskScore,
		&marketCondition, &d.Reasoning, &signalIDs, &ruleResults, &createdAt,
	)
	if err != nil {
		return decision.Decision{}, err
	}
	d.Type = signal.Type(decisionType)
	d.ConfidenceLevel = decision.ConfidenceLevel(confidenceLevel)
	d.RiskLevel = types.RiskLevel(riskLevel)
	d.MarketCondition = types.MarketCondition(marketCondition)
	d.CreatedAt = time.UnixMilli(createdAt)
	if signalIDs != "" {
		if err := json.Unmarshal([]byte(signalIDs), &d.SupportingSignalIDs); err != nil {
			return decision.Decision{}, fmt.Errorf("decoding signal ids failed: %w", err)
		}
	}
	if ruleResults != "" {
		if err := json.Unmarshal([]byte(ruleResults), &d.RuleResults); err != nil {
			return decision.Decision{}, fmt.Errorf("decoding rule results failed: %w", err)
		}
	}
	return d, nil
}
