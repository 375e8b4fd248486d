package cache

import (
	"context"
	"sync"
)

// Memory is an in-memory Store. It is safe for concurrent use and never
// evicts entries.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	v, ok := m.data[string(key)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, key, value []byte) error {
	cp := append([]byte(nil), value...)
	m.mu.Lock()
	m.data[string(key)] = cp
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error {
	return nil
}
