package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   []byte
	created time.Time
}

// InMemoryStore is a process-local Store.
//
// Concurrency: protected by RWMutex. Values are copied on the way in and out
// so callers may reuse their buffers.
type InMemoryStore struct {
	mu      sync.RWMutex
	opts    Options
	entries map[string]map[string]entry // namespace -> key -> entry
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{
		opts:    opts,
		entries: make(map[string]map[string]entry),
	}
}

// Get implements Store.
func (m *InMemoryStore) Get(_ context.Context, namespace, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[namespace][key]
	if !ok || m.opts.expired(e.created) {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Put implements Store.
func (m *InMemoryStore) Put(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[namespace]; !exists {
		m.entries[namespace] = make(map[string]entry)
	}
	m.entries[namespace][key] = entry{
		value:   append([]byte(nil), value...),
		created: m.opts.Now(),
	}
	return nil
}

// Delete implements Store.
func (m *InMemoryStore) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries[namespace], key)
	return nil
}

// Len returns the number of entries in namespace, expired ones included.
func (m *InMemoryStore) Len(namespace string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries[namespace])
}

// Close implements Store.
func (m *InMemoryStore) Close() error { return nil }
