package repo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/pkg/e"
)

// InMemoryProductRepository is an in-memory implementation of ProductRepository.
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products []models.Product
	nextID   int64
}

func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: []models.Product{},
		nextID:   1,
	}
}

func matchesFilter(p models.Product, pf ProductFilter) bool {
	if pf.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(pf.Name)) {
		return false
	}
	if pf.VendorID != nil && p.VendorID != *pf.VendorID {
		return false
	}
	if pf.CategoryID != nil && p.CategoryID != *pf.CategoryID {
		return false
	}
	if pf.MinPrice != nil && p.PriceCents < *pf.MinPrice {
		return false
	}
	if pf.MaxPrice != nil && p.PriceCents > *pf.MaxPrice {
		return false
	}
	if pf.MinQty != nil && p.StockQuantity < *pf.MinQty {
		return false
	}
	if pf.MaxQty != nil && p.StockQuantity > *pf.MaxQty {
		return false
	}
	return true
}

func (r *InMemoryProductRepository) Filter(_ context.Context, pf ProductFilter) ([]models.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filtered := []models.Product{}
	for _, p := range r.products {
		if matchesFilter(p, pf) {
			filtered = append(filtered, p)
		}
	}

	limit := pf.Limit
	if limit == nil || *limit <= 0 || *limit > defaultLimit {
		l := defaultLimit
		limit = &l
	}
	start, end := page(len(filtered), pf.Offset, limit)
	return filtered[start:end], len(filtered), nil
}

func (r *InMemoryProductRepository) Create(_ context.Context, p models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.products {
		if existing.VendorID == p.VendorID && existing.Name == p.Name {
			return models.Product{}, e.ErrDuplicatedValue
		}
	}

	now := time.Now().UTC()
	p.ID = r.nextID
	p.CreatedAt, p.UpdatedAt = now, now
	r.nextID++
	r.products = append(r.products, p)
	return p, nil
}

func (r *InMemoryProductRepository) GetByID(_ context.Context, id int64) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, e.ErrProductNotFound
}

func (r *InMemoryProductRepository) GetByName(_ context.Context, vendorID int64, name string) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.VendorID == vendorID && p.Name == name {
			return p, nil
		}
	}
	return models.Product{}, e.ErrProductNotFound
}

func (r *InMemoryProductRepository) Update(_ context.Context, p models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.products {
		if existing.ID != p.ID {
			continue
		}
		existing.CategoryID = p.CategoryID
		existing.CategoryName = p.CategoryName
		existing.Name = p.Name
		existing.PriceCents = p.PriceCents
		existing.LowStockThreshold = p.LowStockThreshold
		existing.UpdatedAt = time.Now().UTC()
		r.products[i] = existing
		return existing, nil
	}
	return models.Product{}, e.ErrProductNotFound
}

func (r *InMemoryProductRepository) AdjustStock(_ context.Context, productID int64, delta int) (models.StockChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID != productID {
			continue
		}
		if p.StockQuantity+delta < 0 {
			return models.StockChange{}, e.ErrInsufficientStock
		}
		if p.StockQuantity+delta > models.MaxQuantity {
			return models.StockChange{}, e.ErrStockLimit
		}
		change := models.StockChange{
			ProductID: productID,
			Previous:  p.StockQuantity,
			Current:   p.StockQuantity + delta,
			Threshold: p.LowStockThreshold,
		}
		r.products[i].StockQuantity = change.Current
		r.products[i].UpdatedAt = time.Now().UTC()
		return change, nil
	}
	return models.StockChange{}, e.ErrProductNotFound
}

// All returns a copy of every stored product.
func (r *InMemoryProductRepository) All() []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, len(r.products))
	copy(out, r.products)
	return out
}

func (r *InMemoryProductRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = []models.Product{}
	r.nextID = 1
}
