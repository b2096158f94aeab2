package repo

import (
	"context"
	"fmt"
	"time"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

type PostgresMovementRepository struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewPostgresMovementRepository(pool *pgxpool.Pool) *PostgresMovementRepository {
	return &PostgresMovementRepository{pool: pool, getter: trmpgx.DefaultCtxGetter}
}

// Log appends a stock movement
func (r *PostgresMovementRepository) Log(ctx context.Context, m models.Movement) error {
	query := `INSERT INTO movements (product_id, delta, reason, session_id, created_at) VALUES ($1, $2, $3, NULLIF($4, ''), $5)`

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.getter.DefaultTrOrDB(ctx, r.pool).Exec(ctx, query, m.ProductID, m.Delta, m.Reason, m.SessionID, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: failed to insert movement: %w", whereami.WhereAmI(), err)
	}
	return nil
}

// GetByProductID returns movements for a product, newest first
func (r *PostgresMovementRepository) GetByProductID(ctx context.Context, productID int64, mf MovementFilter) ([]models.Movement, int, error) {
	if mf.Offset != nil && *mf.Offset < 0 {
		return nil, 0, e.Wrap("offset must be non-negative", e.ErrMissingFields)
	}

	whereClause, args := buildMovementWhere(productID, mf)

	total, err := r.getTotal(ctx, whereClause, args)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to get total count: %w", whereami.WhereAmI(), err)
	}

	// limit = 0 means count only
	if mf.Limit != nil && *mf.Limit == 0 {
		return []models.Movement{}, total, nil
	}
	if mf.Offset != nil && *mf.Offset >= total {
		return []models.Movement{}, total, nil
	}

	query, queryArgs := buildMovementQuery(whereClause, args, mf)
	movements, err := r.executeQuery(ctx, query, queryArgs)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to execute query: %w", whereami.WhereAmI(), err)
	}

	return movements, total, nil
}

func buildMovementWhere(productID int64, mf MovementFilter) (string, []any) {
	args := []any{productID}
	whereClause := "WHERE product_id = $1"
	argIndex := 2

	if mf.Since != nil {
		whereClause += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *mf.Since)
		argIndex++
	}

	if mf.Until != nil {
		whereClause += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, *mf.Until)
	}

	return whereClause, args
}

func buildMovementQuery(whereClause string, baseArgs []any, mf MovementFilter) (string, []any) {
	query := fmt.Sprintf(`SELECT id, product_id, delta, reason, COALESCE(session_id, ''), created_at
		FROM movements %s ORDER BY created_at DESC, id DESC`, whereClause)
	args := make([]any, len(baseArgs))
	copy(args, baseArgs)
	argIndex := len(baseArgs) + 1

	limit := defaultLimit
	if mf.Limit != nil && *mf.Limit > 0 {
		limit = min(*mf.Limit, defaultLimit)
	}
	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, limit)
	argIndex++

	if mf.Offset != nil && *mf.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, *mf.Offset)
	}

	return query, args
}

func (r *PostgresMovementRepository) getTotal(ctx context.Context, whereClause string, args []any) (int, error) {
	var total int
	err := r.getter.DefaultTrOrDB(ctx, r.pool).
		QueryRow(ctx, "SELECT COUNT(*) FROM movements "+whereClause, args...).
		Scan(&total)
	return total, err
}

func (r *PostgresMovementRepository) executeQuery(ctx context.Context, query string, args []any) ([]models.Movement, error) {
	rows, err := r.getter.DefaultTrOrDB(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []models.Movement{}
	for rows.Next() {
		var m models.Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Delta, &m.Reason, &m.SessionID, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}

	return movements, rows.Err()
}
