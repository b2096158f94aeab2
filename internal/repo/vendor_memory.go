package repo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/pkg/e"
)

type InMemoryVendorRepository struct {
	mu      sync.RWMutex
	vendors []models.Vendor
}

func NewInMemoryVendorRepository() *InMemoryVendorRepository {
	return &InMemoryVendorRepository{
		vendors: []models.Vendor{},
	}
}

func (r *InMemoryVendorRepository) Create(_ context.Context, v models.Vendor) (models.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v.Email = strings.ToLower(v.Email)
	for _, existing := range r.vendors {
		if existing.Email == v.Email || existing.StoreName == v.StoreName {
			return models.Vendor{}, e.ErrDuplicatedValue
		}
	}

	now := time.Now().UTC()
	v.ID = int64(len(r.vendors) + 1)
	v.CreatedAt, v.UpdatedAt = now, now
	r.vendors = append(r.vendors, v)
	return v, nil
}

func (r *InMemoryVendorRepository) GetByID(_ context.Context, id int64) (models.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.vendors {
		if v.ID == id {
			return v, nil
		}
	}
	return models.Vendor{}, e.ErrVendorNotFound
}

func (r *InMemoryVendorRepository) GetByIdentifier(_ context.Context, identifier string) (models.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identifier = strings.TrimSpace(identifier)
	for _, v := range r.vendors {
		if v.Email == strings.ToLower(identifier) || v.StoreName == identifier {
			return v, nil
		}
	}
	return models.Vendor{}, e.ErrVendorNotFound
}

// SetActive toggles a vendor's active flag.
func (r *InMemoryVendorRepository) SetActive(id int64, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.vendors {
		if r.vendors[i].ID == id {
			r.vendors[i].IsActive = active
		}
	}
}
