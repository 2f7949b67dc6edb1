package store

// schemaDDL bootstraps all tables. Statements are idempotent so Open can
// run them on every start.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS situations (
	user_id    TEXT NOT NULL,
	day        TEXT NOT NULL,
	situation  TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (user_id, day)
);

CREATE TABLE IF NOT EXISTS lessons (
	user_id    TEXT NOT NULL,
	day        TEXT NOT NULL,
	content    TEXT NOT NULL,
	evaluation TEXT,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (user_id, day)
);

CREATE TABLE IF NOT EXISTS roleplay_sessions (
	user_id    TEXT NOT NULL,
	day        TEXT NOT NULL,
	goal       TEXT NOT NULL,
	evaluation TEXT,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (user_id, day)
);

CREATE TABLE IF NOT EXISTS roleplay_turns (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL,
	day        TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	UNIQUE (user_id, day, seq)
);

CREATE TABLE IF NOT EXISTS writings (
	user_id    TEXT NOT NULL,
	day        TEXT NOT NULL,
	goal       TEXT NOT NULL,
	vocabs     TEXT NOT NULL,
	evaluation TEXT,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (user_id, day)
);

CREATE TABLE IF NOT EXISTS llm_events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	provider      TEXT NOT NULL,
	model         TEXT NOT NULL,
	purpose       TEXT NOT NULL DEFAULT '',
	latency_ms    INTEGER NOT NULL,
	success       INTEGER NOT NULL,
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	request_body  TEXT,
	response_body TEXT,
	error_message TEXT,
	created_at    TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_llm_events_created ON llm_events (created_at);
`
