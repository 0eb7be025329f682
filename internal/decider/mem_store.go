package decider

import (
	"context"
	"sync"

	"github.com/dissemia/disseminate/internal/confighash"
)

// MemStore is an in-process Store, useful for tests and for one-shot CLI
// invocations that don't want a cache_root on disk.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]confighash.Digest
}

// NewMemStore returns an empty in-memory Store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]confighash.Digest)}
}

// Get implements Store.
func (m *MemStore) Get(ctx context.Context, key string) (confighash.Digest, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.data[key]
	return d, ok, nil
}

// Set implements Store.
func (m *MemStore) Set(ctx context.Context, key string, digest confighash.Digest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = digest
	return nil
}

// Close implements Store.
func (m *MemStore) Close() error { return nil }
