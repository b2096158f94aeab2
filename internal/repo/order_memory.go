package repo

import (
	"context"
	"sync"
	"time"

	"github.com/fejiro0/gomart/internal/models"
)

type InMemoryOrderRepository struct {
	mu     sync.RWMutex
	orders []models.Order
}

func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{orders: []models.Order{}}
}

func (r *InMemoryOrderRepository) Create(_ context.Context, o models.Order) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.CreatedAt = time.Now().UTC()
	r.orders = append(r.orders, o)
	return o, nil
}

func (r *InMemoryOrderRepository) All() []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, len(r.orders))
	copy(out, r.orders)
	return out
}
