// Package cart keeps the server-side cart: each line is a reservation that
// has already taken its units out of the product's stock.
//
// Every operation locks the reservation row before the product row, so cart
// operations and the expiry sweeper never wait on each other in a cycle.
package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fejiro0/gomart/internal/inventory"
	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/internal/repo"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Service struct {
	tx           repo.Transactor
	products     repo.ProductRepository
	reservations repo.ReservationRepository
	orders       repo.OrderRepository
	ledger       *inventory.Ledger
	cache        inventory.Invalidator
	ttl          time.Duration
	log          *zap.Logger
	now          func() time.Time
}

// NewService builds a cart whose lines expire ttl after their last change.
func NewService(store *repo.Store, ledger *inventory.Ledger, cache inventory.Invalidator, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{
		tx:           store.Tx,
		products:     store.Products,
		reservations: store.Reservations,
		orders:       store.Orders,
		ledger:       ledger,
		cache:        cache,
		ttl:          ttl,
		log:          log,
		now:          time.Now,
	}
}

// LineError is one cart line that could not be released.
type LineError struct {
	ProductID   int64
	ProductName string
	Err         error
}

func (le *LineError) Error() string {
	return le.ProductName + ": " + le.Err.Error()
}

func (le *LineError) Unwrap() error {
	return le.Err
}

func validSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return e.ErrInvalidSession
	}
	return nil
}

// AddToCart reserves quantity more units of productID for the session.
func (s *Service) AddToCart(ctx context.Context, sessionID string, productID int64, quantity int) (models.Cart, error) {
	const op = "cart.Service.AddToCart"

	if err := validSession(sessionID); err != nil {
		return models.Cart{}, err
	}
	if quantity <= 0 || quantity > models.MaxQuantity {
		return models.Cart{}, e.ErrInvalidQuantity
	}

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.reservations.Get(ctx, sessionID, productID); err != nil && !errors.Is(err, e.ErrReservationNotFound) {
			return err
		}

		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}

		change, err := s.ledger.Apply(ctx, productID, -quantity, models.ReasonReserve, sessionID)
		if err != nil {
			return err
		}

		_, err = s.reservations.Add(ctx, models.Reservation{
			SessionID:      sessionID,
			ProductID:      productID,
			Quantity:       quantity,
			UnitPriceCents: p.PriceCents,
			ObservedStock:  change.Current,
			ExpiresAt:      s.now().Add(s.ttl).UTC(),
		})
		return err
	})
	if err != nil {
		return models.Cart{}, e.Wrap(op, err)
	}

	s.invalidate(ctx, productID)
	s.log.Debug("reserved", zap.String("session", sessionID), zap.Int64("product_id", productID), zap.Int("quantity", quantity))

	return s.GetCart(ctx, sessionID)
}

// UpdateCartQuantity changes a line by delta. The line must keep at least one
// unit; RemoveFromCart drops it.
func (s *Service) UpdateCartQuantity(ctx context.Context, sessionID string, productID int64, delta int) (models.Cart, error) {
	const op = "cart.Service.UpdateCartQuantity"

	if err := validSession(sessionID); err != nil {
		return models.Cart{}, err
	}
	if delta == 0 || delta > models.MaxQuantity || delta < -models.MaxQuantity {
		return models.Cart{}, e.ErrInvalidDelta
	}

	reason := models.ReasonReserve
	if delta < 0 {
		reason = models.ReasonRelease
	}

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		res, err := s.reservations.Get(ctx, sessionID, productID)
		if err != nil {
			return err
		}
		if res.Quantity+delta < 1 || res.Quantity+delta > models.MaxQuantity {
			return e.ErrInvalidQuantity
		}

		change, err := s.ledger.Apply(ctx, productID, -delta, reason, sessionID)
		if err != nil {
			return err
		}

		res.Quantity += delta
		res.ObservedStock = change.Current
		res.ExpiresAt = s.now().Add(s.ttl).UTC()
		_, err = s.reservations.SetQuantity(ctx, res)
		return err
	})
	if err != nil {
		return models.Cart{}, e.Wrap(op, err)
	}

	s.invalidate(ctx, productID)
	return s.GetCart(ctx, sessionID)
}

// RemoveFromCart drops the line and puts exactly its units back in stock.
func (s *Service) RemoveFromCart(ctx context.Context, sessionID string, productID int64) (models.Cart, error) {
	const op = "cart.Service.RemoveFromCart"

	if err := validSession(sessionID); err != nil {
		return models.Cart{}, err
	}
	if err := s.release(ctx, sessionID, productID); err != nil {
		return models.Cart{}, e.Wrap(op, err)
	}
	return s.GetCart(ctx, sessionID)
}

func (s *Service) release(ctx context.Context, sessionID string, productID int64) error {
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		res, err := s.reservations.Get(ctx, sessionID, productID)
		if err != nil {
			return err
		}
		if _, err := s.ledger.Apply(ctx, productID, res.Quantity, models.ReasonRelease, sessionID); err != nil {
			return err
		}
		_, err = s.reservations.Delete(ctx, sessionID, productID)
		return err
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, productID)
	return nil
}

// ClearCart releases every line in its own unit of work. A line that fails to
// release does not stop the others; all failures are returned together.
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	const op = "cart.Service.ClearCart"

	if err := validSession(sessionID); err != nil {
		return err
	}

	items, err := s.reservations.ListBySession(ctx, sessionID)
	if err != nil {
		return e.Wrap(op, err)
	}

	var errs error
	for _, it := range items {
		err := s.release(ctx, sessionID, it.ProductID)
		if err == nil || errors.Is(err, e.ErrReservationNotFound) {
			continue
		}
		s.log.Warn("failed to release cart line",
			zap.String("session", sessionID), zap.Int64("product_id", it.ProductID), zap.Error(err))
		errs = multierr.Append(errs, &LineError{ProductID: it.ProductID, ProductName: it.ProductName, Err: err})
	}
	return errs
}

func (s *Service) GetCart(ctx context.Context, sessionID string) (models.Cart, error) {
	if err := validSession(sessionID); err != nil {
		return models.Cart{}, err
	}

	items, err := s.reservations.ListBySession(ctx, sessionID)
	if err != nil {
		return models.Cart{}, e.Wrap("cart.Service.GetCart", err)
	}
	return models.NewCart(sessionID, items), nil
}

// Checkout turns the session's lines into an order. Stock was taken when the
// lines were reserved, so it is not touched here.
func (s *Service) Checkout(ctx context.Context, sessionID string) (models.Order, error) {
	const op = "cart.Service.Checkout"

	if err := validSession(sessionID); err != nil {
		return models.Order{}, err
	}

	var order models.Order
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		lines, err := s.reservations.DeleteBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return e.ErrCartEmpty
		}

		order = models.Order{ID: uuid.NewString(), SessionID: sessionID, Lines: make([]models.OrderLine, 0, len(lines))}
		for _, l := range lines {
			order.Lines = append(order.Lines, models.OrderLine{
				ProductID:      l.ProductID,
				Quantity:       l.Quantity,
				UnitPriceCents: l.UnitPriceCents,
			})
			order.TotalCents += l.SubtotalCents()
		}

		order, err = s.orders.Create(ctx, order)
		return err
	})
	if err != nil {
		return models.Order{}, e.Wrap(op, err)
	}

	s.log.Info("order placed", zap.String("order_id", order.ID), zap.String("session", sessionID),
		zap.Int("lines", len(order.Lines)), zap.Int64("total_cents", order.TotalCents))
	return order, nil
}

// ReleaseExpired returns the stock held by up to batch lines that expired at
// or before now. It reports how many lines were released.
func (s *Service) ReleaseExpired(ctx context.Context, now time.Time, batch int) (int, error) {
	const op = "cart.Service.ReleaseExpired"

	var expired []models.Reservation
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		expired, err = s.reservations.DeleteExpired(ctx, now, batch)
		if err != nil {
			return err
		}
		for _, res := range expired {
			if _, err := s.ledger.Apply(ctx, res.ProductID, res.Quantity, models.ReasonExpire, res.SessionID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, e.Wrap(op, err)
	}

	if len(expired) > 0 {
		ids := make([]int64, 0, len(expired))
		for _, res := range expired {
			ids = append(ids, res.ProductID)
		}
		if err := s.cache.DeleteProducts(ctx, ids); err != nil {
			s.log.Warn("failed to invalidate product cache", zap.Error(err))
		}
	}
	return len(expired), nil
}

func (s *Service) invalidate(ctx context.Context, productID int64) {
	if err := s.cache.DeleteProducts(ctx, []int64{productID}); err != nil {
		s.log.Warn("failed to invalidate product cache", zap.Int64("product_id", productID), zap.Error(err))
	}
}
