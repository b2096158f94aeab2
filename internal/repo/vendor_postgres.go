package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const vendorColumns = `id, email, store_name, password_hash, is_active, created_at, updated_at`

type PostgresVendorRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresVendorRepository(pool *pgxpool.Pool) *PostgresVendorRepository {
	return &PostgresVendorRepository{pool: pool}
}

func scanVendor(row pgx.Row) (models.Vendor, error) {
	var v models.Vendor
	err := row.Scan(&v.ID, &v.Email, &v.StoreName, &v.PasswordHash, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Vendor{}, e.ErrVendorNotFound
	}
	if err != nil {
		return models.Vendor{}, e.Wrap(whereami.WhereAmI(), err)
	}
	return v, nil
}

func (r *PostgresVendorRepository) Create(ctx context.Context, v models.Vendor) (models.Vendor, error) {
	query := `
		INSERT INTO vendors (email, store_name, password_hash, is_active)
		VALUES (LOWER($1), $2, $3, $4)
		RETURNING ` + vendorColumns

	out, err := scanVendor(r.pool.QueryRow(ctx, query, v.Email, v.StoreName, v.PasswordHash, v.IsActive))
	if err != nil && isDuplicate(err) {
		return models.Vendor{}, e.ErrDuplicatedValue
	}
	return out, err
}

func (r *PostgresVendorRepository) GetByID(ctx context.Context, id int64) (models.Vendor, error) {
	return scanVendor(r.pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id))
}

func (r *PostgresVendorRepository) GetByIdentifier(ctx context.Context, identifier string) (models.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE email = LOWER($1) OR store_name = $1 LIMIT 1`
	return scanVendor(r.pool.QueryRow(ctx, query, strings.TrimSpace(identifier)))
}
