package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection. Pragmas ride in the DSN
// so every connection the pool opens gets them, not just the first:
// foreign keys on, and a busy timeout so writers back off instead of
// failing fast when the quota store is mid-charge on another connection.
func New(dataSourceName string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
		dataSourceName)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema. Statements are idempotent, so this
// is safe to run at every startup.
func (db *DB) RunMigrations() error {
	migration := `
-- Agencies table
CREATE TABLE IF NOT EXISTS agencies (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    state TEXT,
    state_code TEXT,
    type TEXT,
    population TEXT,
    website TEXT,
    county TEXT,
    created_at TEXT,
    updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_agencies_state_code ON agencies(state_code);
CREATE INDEX IF NOT EXISTS idx_agencies_name ON agencies(name);

-- Contacts table
CREATE TABLE IF NOT EXISTS contacts (
    id TEXT PRIMARY KEY,
    first_name TEXT,
    last_name TEXT,
    email TEXT,
    phone TEXT,
    title TEXT,
    email_type TEXT,
    contact_form_url TEXT,
    department TEXT,
    agency_name TEXT,
    agency_id TEXT,
    firm_id TEXT,
    created_at TEXT,
    updated_at TEXT,
    FOREIGN KEY (agency_id) REFERENCES agencies(id) ON DELETE SET NULL
);
CREATE INDEX IF NOT EXISTS idx_contacts_agency ON contacts(agency_id);
CREATE INDEX IF NOT EXISTS idx_contacts_agency_name ON contacts(agency_name);
CREATE INDEX IF NOT EXISTS idx_contacts_last_name ON contacts(last_name);

-- Per-user per-day count of unique contacts charged against quota
CREATE TABLE IF NOT EXISTS daily_view_counts (
    user_id TEXT NOT NULL,
    date TEXT NOT NULL,
    count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (user_id, date)
);

-- Contacts already counted for a user on a day
CREATE TABLE IF NOT EXISTS viewed_contacts (
    user_id TEXT NOT NULL,
    contact_id TEXT NOT NULL,
    date TEXT NOT NULL,
    PRIMARY KEY (user_id, contact_id, date)
);
CREATE INDEX IF NOT EXISTS idx_viewed_user_date ON viewed_contacts(user_id, date);

-- API keys for authentication
CREATE TABLE IF NOT EXISTS api_keys (
    key_hash TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP,
    description TEXT
);
CREATE INDEX IF NOT EXISTS idx_api_keys_user ON api_keys(user_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
