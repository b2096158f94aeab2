package repo

import (
	"context"
	"strings"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

type PostgresCategoryRepository struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewPostgresCategoryRepository(pool *pgxpool.Pool) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{pool: pool, getter: trmpgx.DefaultCtxGetter}
}

// GetOrCreate is idempotent on name; the no-op update makes RETURNING yield
// the existing row on conflict.
func (r *PostgresCategoryRepository) GetOrCreate(ctx context.Context, name string) (models.Category, error) {
	query := `
		INSERT INTO categories (name, icon) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, icon, created_at
	`
	name = strings.TrimSpace(name)

	var c models.Category
	err := r.getter.DefaultTrOrDB(ctx, r.pool).
		QueryRow(ctx, query, name, models.IconFor(name)).
		Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedAt)
	if err != nil {
		return models.Category{}, e.Wrap(whereami.WhereAmI(), err)
	}
	return c, nil
}

func (r *PostgresCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.getter.DefaultTrOrDB(ctx, r.pool).
		Query(ctx, `SELECT id, name, icon, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedAt); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return categories, nil
}
