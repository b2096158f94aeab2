package repo

import (
	"context"

	"github.com/fejiro0/gomart/internal/models"
)

type ProductFilter struct {
	Name       string
	VendorID   *int64
	CategoryID *int64
	MinPrice   *int64
	MaxPrice   *int64
	MinQty     *int
	MaxQty     *int
	Offset     *int
	Limit      *int
}

type ProductRepository interface {
	Create(ctx context.Context, p models.Product) (models.Product, error)
	GetByID(ctx context.Context, id int64) (models.Product, error)
	GetByName(ctx context.Context, vendorID int64, name string) (models.Product, error)
	Filter(ctx context.Context, pf ProductFilter) ([]models.Product, int, error)
	// Update changes catalog fields only. Stock moves through AdjustStock.
	Update(ctx context.Context, p models.Product) (models.Product, error)
	// AdjustStock applies delta to the product's stock in a single conditional
	// update. It fails with e.ErrInsufficientStock when the result would be
	// negative and e.ErrProductNotFound when the product does not exist.
	AdjustStock(ctx context.Context, productID int64, delta int) (models.StockChange, error)
}
