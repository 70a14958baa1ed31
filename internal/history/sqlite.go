package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/sponsorscout/internal/model"
)

// Ensure SQLiteHistory implements model.HistoryStore.
var _ model.HistoryStore = (*SQLiteHistory)(nil)

// SQLiteHistory keeps the settled actions of the current session in an
// in-memory SQLite database. Nothing is written to disk and the log is gone
// once Close is called or the process exits.
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLiteHistory opens a private in-memory database and creates the
// actions table.
func NewSQLiteHistory() (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS actions (
		seq        INTEGER PRIMARY KEY,
		flow       TEXT NOT NULL,
		outcome    TEXT NOT NULL,
		detail     TEXT NOT NULL,
		result     TEXT NOT NULL,
		num_jobs   INTEGER NOT NULL,
		settled_at INTEGER NOT NULL -- unix nanoseconds
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating actions table: %w", err)
	}

	return &SQLiteHistory{db: db}, nil
}

// Record stores a settled action. Recording the same sequence number twice
// keeps the first entry.
func (h *SQLiteHistory) Record(e model.HistoryEntry) error {
	_, err := h.db.Exec(
		`INSERT OR IGNORE INTO actions (seq, flow, outcome, detail, result, num_jobs, settled_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Seq, string(e.Flow), string(e.Outcome), e.Detail, e.Result, e.NumJobs, e.SettledAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("recording action %d: %w", e.Seq, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (h *SQLiteHistory) Recent(limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := h.db.Query(
		`SELECT seq, flow, outcome, detail, result, num_jobs, settled_at
		 FROM actions ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying actions: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var (
			e             model.HistoryEntry
			flow, outcome string
			settledAt     int64
		)
		if err := rows.Scan(&e.Seq, &flow, &outcome, &e.Detail, &e.Result, &e.NumJobs, &settledAt); err != nil {
			return nil, fmt.Errorf("scanning action: %w", err)
		}
		e.Flow = model.Flow(flow)
		e.Outcome = model.Outcome(outcome)
		e.SettledAt = time.Unix(0, settledAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actions: %w", err)
	}
	return entries, nil
}

// Close releases the database; the recorded history is discarded.
func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}
