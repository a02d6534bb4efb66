// journal/schema.go
package journal

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS trades (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	trade_id TEXT NOT NULL UNIQUE,
	account_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price TEXT NOT NULL,
	executed_at DATETIME NOT NULL,
	cost_basis TEXT,
	realized_pl TEXT,
	emotion TEXT NOT NULL DEFAULT '',
	memo TEXT NOT NULL DEFAULT '',
	confidence INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id, seq);
CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(executed_at);

CREATE TABLE IF NOT EXISTS equity (
	account_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	cash TEXT NOT NULL,
	market_value TEXT NOT NULL,
	total_value TEXT NOT NULL,
	unrealized_pl TEXT NOT NULL,
	realized_pl TEXT NOT NULL,
	unpriced INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(account_id, time);

CREATE TABLE IF NOT EXISTS notes (
	note_id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	trade_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	trade_date DATETIME,
	original_emotion TEXT NOT NULL,
	reviewed_emotion TEXT NOT NULL,
	decision_basis TEXT NOT NULL,
	lessons TEXT NOT NULL,
	principles TEXT NOT NULL,
	decision_score INTEGER NOT NULL,
	emotion_score INTEGER NOT NULL,
	favorite BOOLEAN NOT NULL,
	reviewed_at DATETIME
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS trades (
	seq BIGSERIAL PRIMARY KEY,
	trade_id TEXT NOT NULL UNIQUE,
	account_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity BIGINT NOT NULL,
	price NUMERIC NOT NULL,
	executed_at TIMESTAMPTZ NOT NULL,
	cost_basis NUMERIC,
	realized_pl NUMERIC,
	emotion TEXT NOT NULL DEFAULT '',
	memo TEXT NOT NULL DEFAULT '',
	confidence INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id, seq);
CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(executed_at);

CREATE TABLE IF NOT EXISTS equity (
	account_id TEXT NOT NULL,
	time TIMESTAMPTZ NOT NULL,
	cash NUMERIC NOT NULL,
	market_value NUMERIC NOT NULL,
	total_value NUMERIC NOT NULL,
	unrealized_pl NUMERIC NOT NULL,
	realized_pl NUMERIC NOT NULL,
	unpriced INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(account_id, time);

CREATE TABLE IF NOT EXISTS notes (
	note_id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	trade_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	trade_date TIMESTAMPTZ,
	original_emotion TEXT NOT NULL,
	reviewed_emotion TEXT NOT NULL,
	decision_basis TEXT NOT NULL,
	lessons TEXT NOT NULL,
	principles TEXT NOT NULL,
	decision_score INTEGER NOT NULL,
	emotion_score INTEGER NOT NULL,
	favorite BOOLEAN NOT NULL,
	reviewed_at TIMESTAMPTZ
);
`
