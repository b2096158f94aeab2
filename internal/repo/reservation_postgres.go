package repo

import (
	"context"
	"errors"
	"time"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const reservationReturning = `RETURNING id, session_id, product_id, quantity, unit_price_cents,
	observed_stock, expires_at, created_at, updated_at`

type PostgresReservationRepository struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewPostgresReservationRepository(pool *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{pool: pool, getter: trmpgx.DefaultCtxGetter}
}

func scanReservation(row pgx.Row) (models.Reservation, error) {
	var res models.Reservation
	err := row.Scan(&res.ID, &res.SessionID, &res.ProductID, &res.Quantity, &res.UnitPriceCents,
		&res.ObservedStock, &res.ExpiresAt, &res.CreatedAt, &res.UpdatedAt)
	return res, err
}

func collectReservations(rows pgx.Rows) ([]models.Reservation, error) {
	defer rows.Close()

	out := []models.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *PostgresReservationRepository) Get(ctx context.Context, sessionID string, productID int64) (models.Reservation, error) {
	query := `
		SELECT id, session_id, product_id, quantity, unit_price_cents, observed_stock, expires_at, created_at, updated_at
		FROM cart_reservations
		WHERE session_id = $1 AND product_id = $2
		FOR UPDATE
	`
	res, err := scanReservation(r.getter.DefaultTrOrDB(ctx, r.pool).QueryRow(ctx, query, sessionID, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Reservation{}, e.ErrReservationNotFound
	}
	if err != nil {
		return models.Reservation{}, e.Wrap(whereami.WhereAmI(), err)
	}
	return res, nil
}

func (r *PostgresReservationRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Reservation, error) {
	query := `
		SELECT r.id, r.session_id, r.product_id, r.quantity, r.unit_price_cents, r.observed_stock,
			r.expires_at, r.created_at, r.updated_at, p.name
		FROM cart_reservations r
		JOIN products p ON p.id = r.product_id
		WHERE r.session_id = $1
		ORDER BY r.created_at, r.id
	`
	rows, err := r.getter.DefaultTrOrDB(ctx, r.pool).Query(ctx, query, sessionID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	items := []models.Reservation{}
	for rows.Next() {
		var res models.Reservation
		if err := rows.Scan(&res.ID, &res.SessionID, &res.ProductID, &res.Quantity, &res.UnitPriceCents,
			&res.ObservedStock, &res.ExpiresAt, &res.CreatedAt, &res.UpdatedAt, &res.ProductName); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		items = append(items, res)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return items, nil
}

// Add increments in the upsert itself so two adds racing on a new line cannot
// both insert.
func (r *PostgresReservationRepository) Add(ctx context.Context, res models.Reservation) (models.Reservation, error) {
	query := `
		INSERT INTO cart_reservations (session_id, product_id, quantity, unit_price_cents, observed_stock, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (session_id, product_id) DO UPDATE SET
			quantity = cart_reservations.quantity + EXCLUDED.quantity,
			observed_stock = EXCLUDED.observed_stock,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
		` + reservationReturning

	out, err := scanReservation(r.getter.DefaultTrOrDB(ctx, r.pool).QueryRow(ctx, query,
		res.SessionID, res.ProductID, res.Quantity, res.UnitPriceCents, res.ObservedStock, res.ExpiresAt, time.Now().UTC()))
	if err != nil {
		return models.Reservation{}, e.Wrap(whereami.WhereAmI(), err)
	}
	return out, nil
}

func (r *PostgresReservationRepository) SetQuantity(ctx context.Context, res models.Reservation) (models.Reservation, error) {
	query := `
		UPDATE cart_reservations
		SET quantity = $1, observed_stock = $2, expires_at = $3, updated_at = $4
		WHERE session_id = $5 AND product_id = $6
		` + reservationReturning

	out, err := scanReservation(r.getter.DefaultTrOrDB(ctx, r.pool).QueryRow(ctx, query,
		res.Quantity, res.ObservedStock, res.ExpiresAt, time.Now().UTC(), res.SessionID, res.ProductID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Reservation{}, e.ErrReservationNotFound
	}
	if err != nil {
		return models.Reservation{}, e.Wrap(whereami.WhereAmI(), err)
	}
	return out, nil
}

func (r *PostgresReservationRepository) Delete(ctx context.Context, sessionID string, productID int64) (models.Reservation, error) {
	query := `DELETE FROM cart_reservations WHERE session_id = $1 AND product_id = $2 ` + reservationReturning

	res, err := scanReservation(r.getter.DefaultTrOrDB(ctx, r.pool).QueryRow(ctx, query, sessionID, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Reservation{}, e.ErrReservationNotFound
	}
	if err != nil {
		return models.Reservation{}, e.Wrap(whereami.WhereAmI(), err)
	}
	return res, nil
}

func (r *PostgresReservationRepository) DeleteBySession(ctx context.Context, sessionID string) ([]models.Reservation, error) {
	query := `DELETE FROM cart_reservations WHERE session_id = $1 ` + reservationReturning

	rows, err := r.getter.DefaultTrOrDB(ctx, r.pool).Query(ctx, query, sessionID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	items, err := collectReservations(rows)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return items, nil
}

func (r *PostgresReservationRepository) DeleteExpired(ctx context.Context, now time.Time, limit int) ([]models.Reservation, error) {
	query := `
		DELETE FROM cart_reservations
		WHERE id IN (
			SELECT id FROM cart_reservations
			WHERE expires_at <= $1
			ORDER BY expires_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		` + reservationReturning

	rows, err := r.getter.DefaultTrOrDB(ctx, r.pool).Query(ctx, query, now, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	items, err := collectReservations(rows)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return items, nil
}
