package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is an in-memory [Store]. It backs tests and ephemeral deployments
// where persistence across restarts is not required.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// Compile-time interface check.
var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

// Save persists a new record.
func (m *Memory) Save(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[rec.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, rec.ID)
	}
	rec.CreatedAt = time.Now().UTC()
	m.records[rec.ID] = *rec
	return nil
}

// Get retrieves a record by ID. Returns (nil, nil) when absent.
func (m *Memory) Get(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// List returns the most recent records, newest first.
func (m *Memory) List(_ context.Context, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error {
	return nil
}
