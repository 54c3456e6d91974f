package audit

import (
	"context"
	"sync"
)

// MemoryStore is an in-process audit store for development and testing.
// For durable records, use FileStore, SQLiteStore or PostgresStore.
type MemoryStore struct {
	mu     sync.Mutex
	events []*Event
}

// NewMemoryStore creates an in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, event *Event) error {
	stamp(event)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) Query(_ context.Context, opts QueryOptions) ([]*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Event
	for _, e := range s.events {
		if !matches(e, opts) {
			continue
		}
		out = append(out, e)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
