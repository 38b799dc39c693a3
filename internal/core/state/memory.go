package state

import (
	"sync"

	"github.com/pixelmesh/gomarketd/internal/core/keylet"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// MemoryView is an in-memory base view, used by tests.
type MemoryView struct {
	mu    sync.RWMutex
	items map[types.Hash][]byte
}

// NewMemoryView creates an empty in-memory view.
func NewMemoryView() *MemoryView {
	return &MemoryView{items: make(map[types.Hash][]byte)}
}

func (m *MemoryView) Read(k keylet.Keylet) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.items[k.Key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryView) Exists(k keylet.Keylet) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[k.Key]
	return ok, nil
}

func (m *MemoryView) Insert(k keylet.Keylet, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[k.Key]; ok {
		return ErrExists
	}
	m.items[k.Key] = clone(data)
	return nil
}

func (m *MemoryView) Update(k keylet.Keylet, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[k.Key]; !ok {
		return ErrNotFound
	}
	m.items[k.Key] = clone(data)
	return nil
}

func (m *MemoryView) Erase(k keylet.Keylet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[k.Key]; !ok {
		return ErrNotFound
	}
	delete(m.items, k.Key)
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryView) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
