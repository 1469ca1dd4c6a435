package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'student' CHECK (role IN ('admin', 'staff', 'faculty', 'student')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id                INTEGER PRIMARY KEY,
    reported_by       INTEGER NOT NULL REFERENCES users(id),
    name              TEXT NOT NULL,
    description       TEXT,
    category          TEXT NOT NULL DEFAULT 'Other' CHECK (category IN (
        'Electronics', 'Clothing', 'Accessories', 'Bags', 'Books',
        'Documents', 'Money', 'Living Things', 'Other')),
    color             TEXT,
    location          TEXT,
    item_type         TEXT NOT NULL CHECK (item_type IN ('lost', 'found')),
    date_lost         DATE,
    date_found        DATE,
    status            TEXT NOT NULL DEFAULT 'unclaimed' CHECK (status IN (
        'unmatched', 'matched', 'potential_match', 'claimed',
        'unclaimed', 'returned', 'disposed')),
    matched_lost_item INTEGER REFERENCES items(id),
    image             BLOB,
    image_mime        TEXT,
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at        DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_type_status ON items(item_type, status);

CREATE TABLE IF NOT EXISTS claims (
    id                  INTEGER PRIMARY KEY,
    item_id             INTEGER NOT NULL REFERENCES items(id),
    claimed_by          INTEGER NOT NULL REFERENCES users(id),
    matched_found_item  INTEGER REFERENCES items(id),
    created_by_system   INTEGER NOT NULL DEFAULT 0,
    matched_lost_exists INTEGER NOT NULL DEFAULT 0,
    where_lost          TEXT,
    when_lost           DATE,
    identifying_marks   TEXT,
    message             TEXT,
    status              TEXT NOT NULL DEFAULT 'pending' CHECK (status IN (
        'pending', 'approved', 'rejected', 'returned')),
    reviewed_by         INTEGER REFERENCES users(id),
    reviewed_at         DATETIME,
    decision_note       TEXT,
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_claims_item ON claims(item_id);
CREATE INDEX IF NOT EXISTS idx_claims_claimant ON claims(claimed_by);

CREATE TABLE IF NOT EXISTS notifications (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    message    TEXT NOT NULL,
    is_read    INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
