package repo

import (
	"context"
	"time"

	"github.com/fejiro0/gomart/internal/models"
)

// ReservationRepository is the cart ledger: one row per (session, product)
// holding units already taken out of the product's stock.
type ReservationRepository interface {
	// Get returns the line and locks it for the rest of the unit of work.
	Get(ctx context.Context, sessionID string, productID int64) (models.Reservation, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Reservation, error)
	// Add inserts the line or increments an existing one by res.Quantity.
	Add(ctx context.Context, res models.Reservation) (models.Reservation, error)
	SetQuantity(ctx context.Context, res models.Reservation) (models.Reservation, error)
	Delete(ctx context.Context, sessionID string, productID int64) (models.Reservation, error)
	DeleteBySession(ctx context.Context, sessionID string) ([]models.Reservation, error)
	// DeleteExpired removes up to limit lines that expired at or before now,
	// skipping lines another unit of work holds.
	DeleteExpired(ctx context.Context, now time.Time, limit int) ([]models.Reservation, error)
}
