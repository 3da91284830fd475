package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Entry is one memoized value with the time it was stored.
type Entry struct {
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"stored_at"`
}

// Store holds cache entries. Freshness is judged by the Cache, the ttl
// passed to Save is only a retention hint.
type Store interface {
	Load(ctx context.Context, key string) (Entry, bool)
	Save(ctx context.Context, key string, e Entry, ttl time.Duration) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// Load returns the entry stored under key.
func (m *MemoryStore) Load(_ context.Context, key string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok
}

// Save stores e under key. The ttl is ignored.
func (m *MemoryStore) Save(_ context.Context, key string, e Entry, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
