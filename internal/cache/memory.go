package cache

import (
	"context"
	"sync"

	"github.com/fejiro0/gomart/internal/models"
)

// Memory is a process-local ProductCache without expiry, used with the
// in-memory store.
type Memory struct {
	mu       sync.RWMutex
	products map[int64]models.Product
	versions map[int64]int64
}

func NewMemory() *Memory {
	return &Memory{products: map[int64]models.Product{}, versions: map[int64]int64{}}
}

func (m *Memory) GetProduct(_ context.Context, id int64) (models.Product, int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	return p, m.versions[id], ok
}

func (m *Memory) SetProduct(_ context.Context, p models.Product, version int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[p.ID] != version {
		return
	}
	m.products[p.ID] = p
}

func (m *Memory) DeleteProducts(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.products, id)
		m.versions[id]++
	}
	return nil
}
