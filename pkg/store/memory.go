package store

import (
	"context"
	"sync"
)

// Memory keeps snapshots in process memory. Useful in tests and for hosts
// that only need to survive a window being recreated.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, id string, data []byte) error {
	if err := validateID(id); err != nil {
		return err
	}
	cpy := make([]byte, len(data))
	copy(cpy, data)

	m.mu.Lock()
	m.data[id] = cpy
	m.mu.Unlock()
	return nil
}

// Load implements Store.
func (m *Memory) Load(_ context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	data, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	cpy := make([]byte, len(data))
	copy(cpy, data)
	return cpy, nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.data, id)
	m.mu.Unlock()
	return nil
}
