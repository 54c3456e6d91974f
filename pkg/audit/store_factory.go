package audit

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// StoreConfig holds the parameters needed to create a Store backend.
type StoreConfig struct {
	Backend     string // "off", "memory", "file", "sqlite", "postgres"
	DataDir     string // base data directory (used for file/sqlite defaults)
	SQLitePath  string // explicit SQLite path (overrides DataDir default)
	PostgresDSN string // PostgreSQL connection string
}

// NewStore creates the appropriate Store implementation based on config.
// A nil Store is returned for the "off" backend — callers must treat that
// as auditing disabled.
//
// Backends:
//   - "off"      — auditing disabled
//   - "memory"   — in-process, non-durable (dev/test only)
//   - "file"     — append-only JSONL file
//   - "sqlite"   — single-file durable store
//   - "postgres" — PostgreSQL durable store (shared trail)
func NewStore(cfg StoreConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "off":
		return nil, nil

	case "memory":
		logger.Info("audit store: using in-memory backend (non-durable)")
		return NewMemoryStore(), nil

	case "file":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("file audit store requires data_dir")
		}
		dir := filepath.Join(cfg.DataDir, "audit")
		logger.Info("audit store: using JSONL file backend", "dir", dir)
		return NewFileStore(dir)

	case "sqlite":
		dbPath := cfg.SQLitePath
		if dbPath == "" {
			if cfg.DataDir == "" {
				return nil, fmt.Errorf("sqlite audit store requires sqlite_path or data_dir")
			}
			dbPath = filepath.Join(cfg.DataDir, "audit.db")
		}
		logger.Info("audit store: using SQLite backend", "path", dbPath)
		return NewSQLiteStore(dbPath)

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres audit store requires postgres_dsn")
		}
		logger.Info("audit store: using PostgreSQL backend")
		return NewPostgresStore(cfg.PostgresDSN)

	default:
		return nil, fmt.Errorf("unknown audit store backend: %q (supported: off, memory, file, sqlite, postgres)", cfg.Backend)
	}
}
