package repo

import (
	"context"

	"github.com/fejiro0/gomart/internal/models"
)

type CategoryRepository interface {
	// GetOrCreate returns the category with name, creating it when missing.
	GetOrCreate(ctx context.Context, name string) (models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}
