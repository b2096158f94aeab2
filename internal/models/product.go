package models

import (
	"math"
	"time"
)

// MaxQuantity is the largest stock level, reservation or single change the
// stores accept. Quantities are INTEGER columns.
const MaxQuantity = math.MaxInt32

// Product represents a sellable item listed by a vendor.
type Product struct {
	ID                int64     `json:"id"`
	VendorID          int64     `json:"vendor_id"`
	CategoryID        int64     `json:"category_id"`
	CategoryName      string    `json:"category_name,omitempty"`
	Name              string    `json:"name"`
	PriceCents        int64     `json:"price_cents"`
	StockQuantity     int       `json:"stock_quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (p Product) LowStock() bool {
	return p.StockQuantity < p.LowStockThreshold
}

// StockChange is the outcome of a single atomic stock adjustment.
type StockChange struct {
	ProductID int64 `json:"product_id"`
	Previous  int   `json:"previous_stock"`
	Current   int   `json:"new_stock"`
	Threshold int   `json:"-"`
}

func (c StockChange) Delta() int {
	return c.Current - c.Previous
}

// CrossedBelowThreshold reports whether this change took the product into low stock.
func (c StockChange) CrossedBelowThreshold() bool {
	return c.Current < c.Threshold && c.Previous >= c.Threshold
}
