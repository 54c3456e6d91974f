package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore is a PostgreSQL-backed audit store. Multiple FileClaw
// processes can share one audit trail.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL with the given DSN
// (e.g. "host=db user=fileclaw dbname=fileclaw sslmode=require").
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS audit_events (
			id TEXT PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			type TEXT NOT NULL,
			tool TEXT NOT NULL DEFAULT '',
			is_error BOOLEAN NOT NULL DEFAULT FALSE,
			duration_ns BIGINT NOT NULL DEFAULT 0,
			session_id TEXT NOT NULL DEFAULT '',
			metadata JSONB NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_ts ON audit_events(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_tool ON audit_events(tool)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event *Event) error {
	stamp(event)
	metaJSON, _ := json.Marshal(event.Metadata)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, ts, type, tool, is_error, duration_ns, session_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.Timestamp.UTC(), string(event.Type), event.Tool,
		event.IsError, int64(event.Duration), event.SessionID, string(metaJSON))
	return err
}

func (s *PostgresStore) Query(ctx context.Context, opts QueryOptions) ([]*Event, error) {
	query := "SELECT id, ts, type, tool, is_error, duration_ns, session_id, metadata FROM audit_events WHERE TRUE"
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if opts.Type != "" {
		query += " AND type = " + arg(string(opts.Type))
	}
	if opts.Tool != "" {
		query += " AND tool = " + arg(opts.Tool)
	}
	if opts.ErrorsOnly {
		query += " AND is_error"
	}
	if !opts.Since.IsZero() {
		query += " AND ts >= " + arg(opts.Since.UTC())
	}
	if !opts.Until.IsZero() {
		query += " AND ts <= " + arg(opts.Until.UTC())
	}

	query += " ORDER BY ts ASC"
	if opts.Limit > 0 {
		query += " LIMIT " + arg(opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			e          Event
			typeStr    string
			durationNS int64
			metaJSON   []byte
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &typeStr, &e.Tool, &e.IsError, &durationNS, &e.SessionID, &metaJSON); err != nil {
			return nil, err
		}
		e.Type = EventType(typeStr)
		e.Duration = time.Duration(durationNS)
		json.Unmarshal(metaJSON, &e.Metadata)
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
