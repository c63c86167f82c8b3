// Package journal persists per-cycle sync summaries to SQLite for the
// status and history endpoints. Observability only: the engine's sole
// cross-cycle state remains the per-document frontmatter watermark.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/raido/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cycles (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	documents   INTEGER NOT NULL DEFAULT 0,
	synced      INTEGER NOT NULL DEFAULT 0,
	inserted    INTEGER NOT NULL DEFAULT 0,
	removed     INTEGER NOT NULL DEFAULT 0,
	errors      TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles(started_at);
`

// DB wraps a sql.DB with journal-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record appends one cycle summary.
func (db *DB) Record(sum models.CycleSummary) error {
	errsJSON, _ := json.Marshal(sum.Errors)
	_, err := db.conn.Exec(`
		INSERT INTO cycles (started_at, finished_at, documents, synced, inserted, removed, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sum.StartedAt, sum.FinishedAt, sum.Documents, sum.Synced, sum.Inserted, sum.Removed, string(errsJSON))
	if err != nil {
		return fmt.Errorf("journal: record cycle: %w", err)
	}
	return nil
}

// Recent returns up to limit cycle summaries, newest first.
func (db *DB) Recent(limit int) ([]models.CycleSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT started_at, finished_at, documents, synced, inserted, removed, errors
		FROM cycles ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var out []models.CycleSummary
	for rows.Next() {
		var sum models.CycleSummary
		var started, finished time.Time
		var errsJSON string
		if err := rows.Scan(&started, &finished, &sum.Documents, &sum.Synced, &sum.Inserted, &sum.Removed, &errsJSON); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		sum.StartedAt = started
		sum.FinishedAt = finished
		_ = json.Unmarshal([]byte(errsJSON), &sum.Errors)
		out = append(out, sum)
	}
	return out, rows.Err()
}
