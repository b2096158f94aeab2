package repo

import (
	"context"
	"time"

	"github.com/fejiro0/gomart/internal/models"
)

type MovementFilter struct {
	Since  *time.Time
	Until  *time.Time
	Offset *int
	Limit  *int
}

type MovementRepository interface {
	Log(ctx context.Context, m models.Movement) error
	GetByProductID(ctx context.Context, productID int64, mf MovementFilter) ([]models.Movement, int, error)
}
