package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/pkg/e"
)

type reservationKey struct {
	session string
	product int64
}

type InMemoryReservationRepository struct {
	mu       sync.RWMutex
	lines    map[reservationKey]models.Reservation
	nextID   int64
	products *InMemoryProductRepository
}

// NewInMemoryReservationRepository resolves product names through products
// when it is not nil.
func NewInMemoryReservationRepository(products *InMemoryProductRepository) *InMemoryReservationRepository {
	return &InMemoryReservationRepository{
		lines:    map[reservationKey]models.Reservation{},
		nextID:   1,
		products: products,
	}
}

func (r *InMemoryReservationRepository) Get(_ context.Context, sessionID string, productID int64) (models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.lines[reservationKey{sessionID, productID}]
	if !ok {
		return models.Reservation{}, e.ErrReservationNotFound
	}
	return res, nil
}

func (r *InMemoryReservationRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Reservation, error) {
	r.mu.RLock()
	items := []models.Reservation{}
	for k, res := range r.lines {
		if k.session == sessionID {
			items = append(items, res)
		}
	}
	r.mu.RUnlock()

	sortReservations(items)
	if r.products != nil {
		for i := range items {
			if p, err := r.products.GetByID(ctx, items[i].ProductID); err == nil {
				items[i].ProductName = p.Name
			}
		}
	}
	return items, nil
}

func (r *InMemoryReservationRepository) Add(_ context.Context, res models.Reservation) (models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	key := reservationKey{res.SessionID, res.ProductID}
	if existing, ok := r.lines[key]; ok {
		existing.Quantity += res.Quantity
		existing.ObservedStock = res.ObservedStock
		existing.ExpiresAt = res.ExpiresAt
		existing.UpdatedAt = now
		r.lines[key] = existing
		return existing, nil
	}

	res.ID = r.nextID
	r.nextID++
	res.CreatedAt, res.UpdatedAt = now, now
	res.ProductName = ""
	r.lines[key] = res
	return res, nil
}

func (r *InMemoryReservationRepository) SetQuantity(_ context.Context, res models.Reservation) (models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reservationKey{res.SessionID, res.ProductID}
	existing, ok := r.lines[key]
	if !ok {
		return models.Reservation{}, e.ErrReservationNotFound
	}
	existing.Quantity = res.Quantity
	existing.ObservedStock = res.ObservedStock
	existing.ExpiresAt = res.ExpiresAt
	existing.UpdatedAt = time.Now().UTC()
	r.lines[key] = existing
	return existing, nil
}

func (r *InMemoryReservationRepository) Delete(_ context.Context, sessionID string, productID int64) (models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reservationKey{sessionID, productID}
	res, ok := r.lines[key]
	if !ok {
		return models.Reservation{}, e.ErrReservationNotFound
	}
	delete(r.lines, key)
	return res, nil
}

func (r *InMemoryReservationRepository) DeleteBySession(_ context.Context, sessionID string) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := []models.Reservation{}
	for k, res := range r.lines {
		if k.session == sessionID {
			items = append(items, res)
			delete(r.lines, k)
		}
	}
	sortReservations(items)
	return items, nil
}

func (r *InMemoryReservationRepository) DeleteExpired(_ context.Context, now time.Time, limit int) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expired := []models.Reservation{}
	for _, res := range r.lines {
		if !res.ExpiresAt.After(now) {
			expired = append(expired, res)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].ExpiresAt.Before(expired[j].ExpiresAt) })
	if len(expired) > limit {
		expired = expired[:limit]
	}
	for _, res := range expired {
		delete(r.lines, reservationKey{res.SessionID, res.ProductID})
	}
	return expired, nil
}

// Reserved returns the units held for productID across all sessions.
func (r *InMemoryReservationRepository) Reserved(productID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for k, res := range r.lines {
		if k.product == productID {
			total += res.Quantity
		}
	}
	return total
}

func sortReservations(items []models.Reservation) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
