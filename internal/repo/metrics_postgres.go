package repo

import (
	"context"
	"errors"

	"github.com/fejiro0/gomart/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

type PostgresMetricsRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresMetricsRepository(pool *pgxpool.Pool) *PostgresMetricsRepository {
	return &PostgresMetricsRepository{pool: pool}
}

func (r *PostgresMetricsRepository) GetDashboardMetrics(ctx context.Context, vendorID int64) (Metrics, error) {
	var m Metrics

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE stock_quantity < low_stock_threshold),
			COALESCE(SUM(stock_quantity), 0)
		FROM products WHERE vendor_id = $1
	`, vendorID).Scan(&m.TotalProducts, &m.LowStockCount, &m.UnitsInStock)
	if err != nil {
		return Metrics{}, e.Wrap(whereami.WhereAmI(), err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(r.quantity), 0)
		FROM cart_reservations r JOIN products p ON p.id = r.product_id
		WHERE p.vendor_id = $1
	`, vendorID).Scan(&m.UnitsReserved)
	if err != nil {
		return Metrics{}, e.Wrap(whereami.WhereAmI(), err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT l.order_id), COALESCE(SUM(l.quantity), 0)
		FROM order_lines l JOIN products p ON p.id = l.product_id
		WHERE p.vendor_id = $1
	`, vendorID).Scan(&m.OrdersCount, &m.UnitsSold)
	if err != nil {
		return Metrics{}, e.Wrap(whereami.WhereAmI(), err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM movements m JOIN products p ON p.id = m.product_id
		WHERE p.vendor_id = $1
	`, vendorID).Scan(&m.TotalMovements)
	if err != nil {
		return Metrics{}, e.Wrap(whereami.WhereAmI(), err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT p.name, COUNT(*) AS cnt
		FROM movements m
		JOIN products p ON m.product_id = p.id
		WHERE p.vendor_id = $1
		GROUP BY p.id, p.name
		ORDER BY cnt DESC, p.id
		LIMIT 1
	`, vendorID).Scan(&m.MostMovedProduct.Name, &m.MostMovedProduct.MovementCount)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Metrics{}, e.Wrap(whereami.WhereAmI(), err)
	}

	return m, nil
}
