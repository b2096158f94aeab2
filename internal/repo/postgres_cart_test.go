package repo_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fejiro0/gomart/internal/cache"
	"github.com/fejiro0/gomart/internal/cart"
	"github.com/fejiro0/gomart/internal/inventory"
	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/internal/repo"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// brokenReservations fails every reservation write after the stock has
// already been taken in the same unit of work.
type brokenReservations struct {
	repo.ReservationRepository
}

func (brokenReservations) Add(context.Context, models.Reservation) (models.Reservation, error) {
	return models.Reservation{}, errors.New("reservation write failed")
}

func (s *postgresStoreSuite) cartService(store *repo.Store) *cart.Service {
	log := zaptest.NewLogger(s.T())
	ledger := inventory.NewLedger(store.Products, store.Movements, store.Outbox, log)
	return cart.NewService(store, ledger, cache.Nop{}, 30*time.Minute, log)
}

func (s *postgresStoreSuite) TestCartConcurrentAddsForLastUnit() {
	t := s.T()
	ctx := t.Context()
	p := s.newProduct(1, 0)
	svc := s.cartService(s.store)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.AddToCart(ctx, gofakeit.UUID(), p.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, e.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejected)

	got, err := s.store.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)
}

func (s *postgresStoreSuite) TestCartAddRollsBackStockWhenReservationFails() {
	t := s.T()
	ctx := t.Context()
	p := s.newProduct(5, 0)
	session := gofakeit.UUID()

	broken := *s.store
	broken.Reservations = brokenReservations{ReservationRepository: s.store.Reservations}

	_, err := s.cartService(&broken).AddToCart(ctx, session, p.ID, 3)
	require.ErrorContains(t, err, "reservation write failed")

	got, err := s.store.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockQuantity)

	_, total, err := s.store.Movements.GetByProductID(ctx, p.ID, repo.MovementFilter{})
	require.NoError(t, err)
	assert.Zero(t, total, "movement log rolled back with the stock")

	items, err := s.store.Reservations.ListBySession(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, items)
}
