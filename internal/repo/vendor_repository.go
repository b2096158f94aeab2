package repo

import (
	"context"

	"github.com/fejiro0/gomart/internal/models"
)

type VendorRepository interface {
	Create(ctx context.Context, v models.Vendor) (models.Vendor, error)
	GetByID(ctx context.Context, id int64) (models.Vendor, error)
	// GetByIdentifier looks a vendor up by email or store name.
	GetByIdentifier(ctx context.Context, identifier string) (models.Vendor, error)
}
