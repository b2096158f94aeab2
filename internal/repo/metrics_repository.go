package repo

import "context"

type MostMovedProduct struct {
	Name          string `json:"name"`
	MovementCount int    `json:"movement_count"`
}

// Metrics are the vendor dashboard counts, scoped to one vendor's products.
type Metrics struct {
	TotalProducts    int              `json:"total_products"`
	LowStockCount    int              `json:"low_stock_count"`
	UnitsInStock     int              `json:"units_in_stock"`
	UnitsReserved    int              `json:"units_reserved"`
	OrdersCount      int              `json:"orders_count"`
	UnitsSold        int              `json:"units_sold"`
	TotalMovements   int              `json:"total_movements"`
	MostMovedProduct MostMovedProduct `json:"most_moved_product"`
}

type MetricsRepository interface {
	GetDashboardMetrics(ctx context.Context, vendorID int64) (Metrics, error)
}
