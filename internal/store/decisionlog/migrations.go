package decisionlog

import "database/sql"

func ensureSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		decision_type TEXT NOT NULL,
		recommended_action TEXT,
		quantity INTEGER DEFAULT 0,
		price REAL DEFAULT 0,
		confidence_level TEXT,
		confidence_score REAL DEFAULT 0,
		risk_level TEXT,
		risk_score REAL DEFAULT 0,
		market_condition TEXT,
		reasoning TEXT,
		signal_ids TEXT,
		rule_results TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_symbol_ts ON decisions(symbol, created_at);
	`
	_, err := db.Exec(schema)
	return err
}
