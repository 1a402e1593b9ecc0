package channel

import (
	"context"
	"slices"
	"sync"
)

// MemoryChannel is a process-local Channel. Values are copied on the way in
// and out so callers can never alias stored bytes.
type MemoryChannel struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{values: make(map[string][]byte)}
}

func (m *MemoryChannel) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return slices.Clone(v), nil
}

func (m *MemoryChannel) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = slices.Clone(value)
	return nil
}

func (m *MemoryChannel) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
