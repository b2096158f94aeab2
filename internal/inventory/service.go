package inventory

import (
	"context"

	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/internal/repo"
	"github.com/fejiro0/gomart/pkg/e"
	"go.uber.org/zap"
)

// Service is the vendor-facing stock adjustment.
type Service struct {
	tx       repo.Transactor
	products repo.ProductRepository
	ledger   *Ledger
	cache    Invalidator
	log      *zap.Logger
}

func NewService(tx repo.Transactor, products repo.ProductRepository, ledger *Ledger, cache Invalidator, log *zap.Logger) *Service {
	return &Service{tx: tx, products: products, ledger: ledger, cache: cache, log: log}
}

// Adjust applies a signed quantity change to a product owned by vendorID.
// The change is rejected, and stock left as it was, when it would take stock
// below zero.
func (s *Service) Adjust(ctx context.Context, vendorID, productID int64, delta int) (models.StockChange, error) {
	const op = "inventory.Service.Adjust"

	if delta == 0 || delta > models.MaxQuantity || delta < -models.MaxQuantity {
		return models.StockChange{}, e.ErrInvalidDelta
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return models.StockChange{}, e.Wrap(op, err)
	}
	if p.VendorID != vendorID {
		return models.StockChange{}, e.ErrForbidden
	}

	var change models.StockChange
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		change, err = s.ledger.Apply(ctx, productID, delta, models.ReasonRestock, "")
		return err
	})
	if err != nil {
		return models.StockChange{}, e.Wrap(op, err)
	}

	if err := s.cache.DeleteProducts(ctx, []int64{productID}); err != nil {
		s.log.Warn("failed to invalidate product cache", zap.Int64("product_id", productID), zap.Error(err))
	}

	s.log.Info("stock adjusted",
		zap.Int64("vendor_id", vendorID),
		zap.Int64("product_id", productID),
		zap.Int("previous", change.Previous),
		zap.Int("current", change.Current),
	)
	return change, nil
}
