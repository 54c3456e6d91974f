// Package audit provides an append-only, structured log of FileClaw tool
// invocations. Every tools/call handled by the server can be recorded as an
// immutable event and later queried or exported as JSON for ingestion.
//
// Backends: in-memory (dev/test), JSONL file, SQLite, PostgreSQL. Audit
// failures are reported to the diagnostic stream and never affect the
// protocol channel.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType categorizes audit events.
type EventType string

const (
	EventToolCall    EventType = "tool.call"
	EventServerStart EventType = "server.start"
	EventServerStop  EventType = "server.stop"
)

// Event is a single immutable audit record.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"ts"`
	Type      EventType      `json:"type"`
	Tool      string         `json:"tool,omitempty"`
	IsError   bool           `json:"is_error,omitempty"`
	Duration  time.Duration  `json:"duration_ms,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// QueryOptions filters audit log queries.
type QueryOptions struct {
	Type       EventType
	Tool       string
	ErrorsOnly bool
	Since      time.Time
	Until      time.Time
	Limit      int
}

// Store is the persistence interface for the audit log.
type Store interface {
	// Append writes an event. Events are immutable once written.
	Append(ctx context.Context, event *Event) error

	// Query retrieves events matching the given filters, oldest first.
	Query(ctx context.Context, opts QueryOptions) ([]*Event, error)

	// Close releases any backend resources.
	Close() error
}

// stamp fills in the generated fields of an event before it is persisted.
func stamp(event *Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
}

// matches reports whether an event passes the query filters.
func matches(e *Event, opts QueryOptions) bool {
	if opts.Type != "" && e.Type != opts.Type {
		return false
	}
	if opts.Tool != "" && e.Tool != opts.Tool {
		return false
	}
	if opts.ErrorsOnly && !e.IsError {
		return false
	}
	if !opts.Since.IsZero() && e.Timestamp.Before(opts.Since) {
		return false
	}
	if !opts.Until.IsZero() && e.Timestamp.After(opts.Until) {
		return false
	}
	return true
}

// Logger is a convenience wrapper for emitting audit events tied to one
// server session.
type Logger struct {
	store     Store
	sessionID string
}

// NewLogger creates an audit logger. A fresh session ID is generated per
// process so events from one serve run can be correlated.
func NewLogger(store Store) *Logger {
	return &Logger{store: store, sessionID: uuid.NewString()}
}

// SessionID returns the session identifier attached to every event.
func (l *Logger) SessionID() string { return l.sessionID }

// LogToolCall records a single tool invocation.
func (l *Logger) LogToolCall(ctx context.Context, tool string, isError bool, duration time.Duration) error {
	return l.store.Append(ctx, &Event{
		Type:      EventToolCall,
		Tool:      tool,
		IsError:   isError,
		Duration:  duration,
		SessionID: l.sessionID,
	})
}

// LogServerStart records the beginning of a serve session.
func (l *Logger) LogServerStart(ctx context.Context, serverName, version string) error {
	return l.store.Append(ctx, &Event{
		Type:      EventServerStart,
		SessionID: l.sessionID,
		Metadata: map[string]any{
			"server":  serverName,
			"version": version,
		},
	})
}

// LogServerStop records the end of a serve session.
func (l *Logger) LogServerStop(ctx context.Context) error {
	return l.store.Append(ctx, &Event{
		Type:      EventServerStop,
		SessionID: l.sessionID,
	})
}
