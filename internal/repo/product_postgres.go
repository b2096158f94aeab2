package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const productColumns = `p.id, p.vendor_id, p.category_id, c.name, p.name, p.price_cents,
	p.stock_quantity, p.low_stock_threshold, p.created_at, p.updated_at`

const productFrom = ` FROM products p JOIN categories c ON c.id = p.category_id`

type PostgresProductRepository struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewPostgresProductRepository(pool *pgxpool.Pool) *PostgresProductRepository {
	return &PostgresProductRepository{pool: pool, getter: trmpgx.DefaultCtxGetter}
}

func scanProduct(row pgx.Row) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.VendorID, &p.CategoryID, &p.CategoryName, &p.Name, &p.PriceCents,
		&p.StockQuantity, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	query := `
		INSERT INTO products (vendor_id, category_id, name, price_cents, stock_quantity, low_stock_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, created_at, updated_at
	`
	now := time.Now().UTC()
	err := r.getter.DefaultTrOrDB(ctx, r.pool).
		QueryRow(ctx, query, p.VendorID, p.CategoryID, p.Name, p.PriceCents, p.StockQuantity, p.LowStockThreshold, now).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return models.Product{}, e.Wrap(whereami.WhereAmI(), e.ErrDuplicatedValue)
		}
		return models.Product{}, e.Wrap(whereami.WhereAmI(), err)
	}
	return p, nil
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (models.Product, error) {
	query := `SELECT ` + productColumns + productFrom + ` WHERE p.id = $1`

	p, err := scanProduct(r.getter.DefaultTrOrDB(ctx, r.pool).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Product{}, e.ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, e.Wrap(whereami.WhereAmI(), err)
	}
	return p, nil
}

func (r *PostgresProductRepository) GetByName(ctx context.Context, vendorID int64, name string) (models.Product, error) {
	query := `SELECT ` + productColumns + productFrom + ` WHERE p.vendor_id = $1 AND p.name = $2`

	p, err := scanProduct(r.getter.DefaultTrOrDB(ctx, r.pool).QueryRow(ctx, query, vendorID, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Product{}, e.ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, e.Wrap(whereami.WhereAmI(), err)
	}
	return p, nil
}

func (r *PostgresProductRepository) Update(ctx context.Context, p models.Product) (models.Product, error) {
	query := `
		UPDATE products
		SET category_id = $1, name = $2, price_cents = $3, low_stock_threshold = $4, updated_at = $5
		WHERE id = $6
		RETURNING stock_quantity, updated_at
	`
	err := r.getter.DefaultTrOrDB(ctx, r.pool).
		QueryRow(ctx, query, p.CategoryID, p.Name, p.PriceCents, p.LowStockThreshold, time.Now().UTC(), p.ID).
		Scan(&p.StockQuantity, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Product{}, e.ErrProductNotFound
	}
	if err != nil {
		if isDuplicate(err) {
			return models.Product{}, e.Wrap(whereami.WhereAmI(), e.ErrDuplicatedValue)
		}
		return models.Product{}, e.Wrap(whereami.WhereAmI(), err)
	}
	return p, nil
}

func (r *PostgresProductRepository) Filter(ctx context.Context, pf ProductFilter) ([]models.Product, int, error) {
	conditions, args, argIdx := filterConditions(pf)
	conn := r.getter.DefaultTrOrDB(ctx, r.pool)

	var total int
	countQuery := "SELECT COUNT(*)" + productFrom + " WHERE 1=1" + conditions
	if err := conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	query := "SELECT " + productColumns + productFrom + " WHERE 1=1" + conditions + " ORDER BY p.id"

	limit := defaultLimit
	if pf.Limit != nil && *pf.Limit > 0 {
		limit = min(*pf.Limit, defaultLimit)
	}
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, limit)
	argIdx++

	if pf.Offset != nil && *pf.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, *pf.Offset)
	}

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, e.Wrap(whereami.WhereAmI(), err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, total, nil
}

func filterConditions(pf ProductFilter) (string, []any, int) {
	query := ""
	argIdx := 1
	args := []any{}

	add := func(cond string, v any) {
		query += fmt.Sprintf(cond, argIdx)
		args = append(args, v)
		argIdx++
	}

	if pf.Name != "" {
		add(" AND p.name ILIKE $%d", "%"+pf.Name+"%")
	}
	if pf.VendorID != nil {
		add(" AND p.vendor_id = $%d", *pf.VendorID)
	}
	if pf.CategoryID != nil {
		add(" AND p.category_id = $%d", *pf.CategoryID)
	}
	if pf.MinPrice != nil {
		add(" AND p.price_cents >= $%d", *pf.MinPrice)
	}
	if pf.MaxPrice != nil {
		add(" AND p.price_cents <= $%d", *pf.MaxPrice)
	}
	if pf.MinQty != nil {
		add(" AND p.stock_quantity >= $%d", *pf.MinQty)
	}
	if pf.MaxQty != nil {
		add(" AND p.stock_quantity <= $%d", *pf.MaxQty)
	}

	return query, args, argIdx
}

// AdjustStock relies on the row lock taken by UPDATE: concurrent callers for
// the same product are applied one after another, each against the value the
// previous one committed.
func (r *PostgresProductRepository) AdjustStock(ctx context.Context, productID int64, delta int) (models.StockChange, error) {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = $2
		WHERE id = $3 AND stock_quantity + $1 >= 0
		RETURNING stock_quantity - $1, stock_quantity, low_stock_threshold
	`
	conn := r.getter.DefaultTrOrDB(ctx, r.pool)

	change := models.StockChange{ProductID: productID}
	err := conn.QueryRow(ctx, query, delta, time.Now().UTC(), productID).
		Scan(&change.Previous, &change.Current, &change.Threshold)
	if err == nil {
		return change, nil
	}
	if isOutOfRange(err) {
		return models.StockChange{}, e.ErrStockLimit
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.StockChange{}, e.Wrap(whereami.WhereAmI(), err)
	}

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return models.StockChange{}, e.Wrap(whereami.WhereAmI(), err)
	}
	if !exists {
		return models.StockChange{}, e.ErrProductNotFound
	}
	return models.StockChange{}, e.ErrInsufficientStock
}
