package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fejiro0/gomart/internal/models"
)

type InMemoryMovementRepository struct {
	mu        sync.RWMutex
	movements []models.Movement
}

func NewInMemoryMovementRepository() *InMemoryMovementRepository {
	return &InMemoryMovementRepository{
		movements: []models.Movement{},
	}
}

func (r *InMemoryMovementRepository) Log(_ context.Context, m models.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m.ID = int64(len(r.movements) + 1)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.movements = append(r.movements, m)
	return nil
}

// GetByProductID returns movements for a product, newest first, optionally
// filtered by date range and paginated.
func (r *InMemoryMovementRepository) GetByProductID(_ context.Context, productID int64, mf MovementFilter) ([]models.Movement, int, error) {
	r.mu.RLock()
	filtered := []models.Movement{}
	for _, m := range r.movements {
		if m.ProductID != productID {
			continue
		}
		if (mf.Since != nil && m.CreatedAt.Before(*mf.Since)) ||
			(mf.Until != nil && m.CreatedAt.After(*mf.Until)) {
			continue
		}
		filtered = append(filtered, m)
	}
	r.mu.RUnlock()

	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].ID > filtered[j].ID })

	if mf.Limit != nil && *mf.Limit == 0 {
		return []models.Movement{}, len(filtered), nil
	}

	limit := mf.Limit
	if limit == nil || *limit < 0 || *limit > defaultLimit {
		l := defaultLimit
		limit = &l
	}
	start, end := page(len(filtered), mf.Offset, limit)
	return filtered[start:end], len(filtered), nil
}

// All returns every logged movement in insertion order.
func (r *InMemoryMovementRepository) All() []models.Movement {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Movement, len(r.movements))
	copy(out, r.movements)
	return out
}
