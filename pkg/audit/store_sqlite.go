package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGo)
)

// SQLiteStore is a single-file durable audit store. Suitable for
// single-node deployments; use PostgresStore when multiple servers share
// one audit trail.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath.
// Use ":memory:" for an in-memory database (testing).
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			ts DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			type TEXT NOT NULL,
			tool TEXT NOT NULL DEFAULT '',
			is_error INTEGER NOT NULL DEFAULT 0,
			duration_ns INTEGER NOT NULL DEFAULT 0,
			session_id TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_events_tool ON events(tool)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, event *Event) error {
	stamp(event)
	metaJSON, _ := json.Marshal(event.Metadata)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, ts, type, tool, is_error, duration_ns, session_id, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Timestamp.UTC(), string(event.Type), event.Tool,
		boolToInt(event.IsError), int64(event.Duration), event.SessionID, string(metaJSON))
	return err
}

func (s *SQLiteStore) Query(ctx context.Context, opts QueryOptions) ([]*Event, error) {
	query := "SELECT id, ts, type, tool, is_error, duration_ns, session_id, metadata FROM events WHERE 1=1"
	var args []any

	if opts.Type != "" {
		query += " AND type = ?"
		args = append(args, string(opts.Type))
	}
	if opts.Tool != "" {
		query += " AND tool = ?"
		args = append(args, opts.Tool)
	}
	if opts.ErrorsOnly {
		query += " AND is_error = 1"
	}
	if !opts.Since.IsZero() {
		query += " AND ts >= ?"
		args = append(args, opts.Since.UTC())
	}
	if !opts.Until.IsZero() {
		query += " AND ts <= ?"
		args = append(args, opts.Until.UTC())
	}

	query += " ORDER BY ts ASC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ------------------------------------------------------------------
// Scan helpers (shared with PostgresStore)
// ------------------------------------------------------------------

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var events []*Event
	for rows.Next() {
		var (
			e          Event
			ts         time.Time
			typeStr    string
			isError    int
			durationNS int64
			metaJSON   string
		)
		if err := rows.Scan(&e.ID, &ts, &typeStr, &e.Tool, &isError, &durationNS, &e.SessionID, &metaJSON); err != nil {
			return nil, err
		}
		e.Timestamp = ts
		e.Type = EventType(typeStr)
		e.IsError = isError != 0
		e.Duration = time.Duration(durationNS)
		json.Unmarshal([]byte(metaJSON), &e.Metadata)
		events = append(events, &e)
	}
	return events, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
