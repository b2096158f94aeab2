package repo

import (
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

type PostgresOrderRepository struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewPostgresOrderRepository(pool *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{pool: pool, getter: trmpgx.DefaultCtxGetter}
}

// Create must run inside a unit of work so the order and its lines commit together.
func (r *PostgresOrderRepository) Create(ctx context.Context, o models.Order) (models.Order, error) {
	conn := r.getter.DefaultTrOrDB(ctx, r.pool)

	err := conn.QueryRow(ctx,
		`INSERT INTO orders (id, session_id, total_cents) VALUES ($1, $2, $3) RETURNING created_at`,
		o.ID, o.SessionID, o.TotalCents,
	).Scan(&o.CreatedAt)
	if err != nil {
		return models.Order{}, e.Wrap(whereami.WhereAmI(), err)
	}

	batch := &pgx.Batch{}
	for _, l := range o.Lines {
		batch.Queue(
			`INSERT INTO order_lines (order_id, product_id, quantity, unit_price_cents) VALUES ($1, $2, $3, $4)`,
			o.ID, l.ProductID, l.Quantity, l.UnitPriceCents,
		)
	}
	if err := conn.SendBatch(ctx, batch).Close(); err != nil {
		return models.Order{}, e.Wrap(whereami.WhereAmI(), err)
	}

	return o, nil
}
