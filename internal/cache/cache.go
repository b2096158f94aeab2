// Package cache keeps read-through copies of catalog products.
//
// Every product has a version that DeleteProducts bumps. A miss reports the
// version current at lookup time, and SetProduct stores only while that
// version is still current, so a row read before an invalidation never
// outlives it in the cache.
package cache

import (
	"context"

	"github.com/fejiro0/gomart/internal/models"
)

type ProductCache interface {
	// GetProduct reports a miss with ok == false, along with the version to
	// pass to SetProduct.
	GetProduct(ctx context.Context, id int64) (p models.Product, version int64, ok bool)
	SetProduct(ctx context.Context, p models.Product, version int64)
	DeleteProducts(ctx context.Context, ids []int64) error
}

// Nop caches nothing.
type Nop struct{}

func (Nop) GetProduct(context.Context, int64) (models.Product, int64, bool) {
	return models.Product{}, 0, false
}
func (Nop) SetProduct(context.Context, models.Product, int64) {}
func (Nop) DeleteProducts(context.Context, []int64) error     { return nil }
