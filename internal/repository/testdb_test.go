package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testSchema mirrors scripts/schema.sql in sqlite dialect.  All
// production queries use ? placeholders and portable SQL, so the
// repositories run unchanged against this database.
const testSchema = `
CREATE TABLE users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    email         TEXT      NOT NULL UNIQUE,
    password_hash TEXT      NOT NULL,
    role          TEXT      NOT NULL,
    is_active     BOOLEAN   NOT NULL DEFAULT 1,
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);
CREATE TABLE refresh_tokens (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    INTEGER   NOT NULL,
    token_hash TEXT      NOT NULL UNIQUE,
    expires_at TIMESTAMP NOT NULL,
    revoked_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE books (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_id     INTEGER   NOT NULL,
    title        TEXT      NOT NULL,
    author       TEXT      NOT NULL,
    genre        TEXT      NOT NULL,
    cond         TEXT      NOT NULL,
    description  TEXT      NOT NULL,
    price_cents  INTEGER,
    is_available BOOLEAN   NOT NULL,
    cover_url    TEXT,
    cover_key    TEXT,
    created_at   TIMESTAMP NOT NULL,
    updated_at   TIMESTAMP NOT NULL
);
CREATE TABLE loans (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    book_id          INTEGER   NOT NULL,
    lender_id        INTEGER   NOT NULL,
    borrower_id      INTEGER   NOT NULL,
    borrower_email   TEXT      NOT NULL,
    book_title       TEXT      NOT NULL,
    book_author      TEXT      NOT NULL,
    book_cover       TEXT,
    book_description TEXT      NOT NULL,
    days_left        INTEGER   NOT NULL,
    status           TEXT      NOT NULL,
    created_at       TIMESTAMP NOT NULL,
    updated_at       TIMESTAMP NOT NULL
);
`

// newTestDB opens a fresh sqlite database in a temp dir and applies
// the schema.  The handle is closed automatically when the test ends.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sql.Open("sqlite3", filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}
