package repo

import (
	"context"

	"github.com/fejiro0/gomart/internal/models"
)

type OrderRepository interface {
	Create(ctx context.Context, o models.Order) (models.Order, error)
}
