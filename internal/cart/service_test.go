package cart

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fejiro0/gomart/internal/inventory"
	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/internal/repo"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type nopCache struct{}

func (nopCache) DeleteProducts(context.Context, []int64) error { return nil }

// flakyProducts fails stock adjustments for one product.
type flakyProducts struct {
	repo.ProductRepository
	failFor int64
}

func (f flakyProducts) AdjustStock(ctx context.Context, productID int64, delta int) (models.StockChange, error) {
	if productID == f.failFor {
		return models.StockChange{}, errors.New("connection reset")
	}
	return f.ProductRepository.AdjustStock(ctx, productID, delta)
}

type fixture struct {
	store *repo.Store
	svc   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repo.NewMemoryStore()
	return &fixture{store: store, svc: newService(t, store, store.Products)}
}

func newService(t *testing.T, store *repo.Store, products repo.ProductRepository) *Service {
	log := zaptest.NewLogger(t)
	ledger := inventory.NewLedger(products, store.Movements, store.Outbox, log)
	return NewService(store, ledger, nopCache{}, 30*time.Minute, log)
}

func (f *fixture) product(t *testing.T, stock int) models.Product {
	t.Helper()
	p, err := f.store.Products.Create(context.Background(), models.Product{
		VendorID:      1,
		CategoryID:    1,
		Name:          gofakeit.ProductName() + " " + gofakeit.UUID(),
		PriceCents:    int64(gofakeit.Number(50, 5000)),
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, productID int64) int {
	t.Helper()
	p, err := f.store.Products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}

func TestAddUpdateRemoveExample(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 10)
	session := gofakeit.UUID()

	c, err := f.svc.AddToCart(ctx, session, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, f.stock(t, p.ID))
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, 7, c.Items[0].ObservedStock)

	c, err = f.svc.UpdateCartQuantity(ctx, session, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, f.stock(t, p.ID))
	assert.Equal(t, 5, c.TotalUnits)
	assert.Equal(t, 5*p.PriceCents, c.TotalCents)

	c, err = f.svc.RemoveFromCart(ctx, session, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, p.ID))
	assert.Empty(t, c.Items)
}

func TestAddMoreThanStockRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 2)
	session := gofakeit.UUID()

	_, err := f.svc.AddToCart(ctx, session, p.ID, 3)
	require.ErrorIs(t, err, e.ErrInsufficientStock)
	assert.Equal(t, 2, f.stock(t, p.ID))

	c, err := f.svc.GetCart(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	_, total, err := f.store.Movements.GetByProductID(ctx, p.ID, repo.MovementFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAddToExistingLineAccumulates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 10)
	session := gofakeit.UUID()

	_, err := f.svc.AddToCart(ctx, session, p.ID, 2)
	require.NoError(t, err)
	c, err := f.svc.AddToCart(ctx, session, p.ID, 4)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 6, c.Items[0].Quantity)
	assert.Equal(t, 4, f.stock(t, p.ID))
}

func TestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 5)
	session := gofakeit.UUID()
	_, err := f.svc.AddToCart(ctx, session, p.ID, 2)
	require.NoError(t, err)

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"add zero", func() error { _, err := f.svc.AddToCart(ctx, session, p.ID, 0); return err }, e.ErrInvalidQuantity},
		{"add negative", func() error { _, err := f.svc.AddToCart(ctx, session, p.ID, -1); return err }, e.ErrInvalidQuantity},
		{"add unknown product", func() error { _, err := f.svc.AddToCart(ctx, session, 999, 1); return err }, e.ErrProductNotFound},
		{"add without session", func() error { _, err := f.svc.AddToCart(ctx, " ", p.ID, 1); return err }, e.ErrInvalidSession},
		{"add beyond column range", func() error { _, err := f.svc.AddToCart(ctx, session, p.ID, 3_000_000_000); return err }, e.ErrInvalidQuantity},
		{"update by zero", func() error { _, err := f.svc.UpdateCartQuantity(ctx, session, p.ID, 0); return err }, e.ErrInvalidDelta},
		{"update beyond column range", func() error { _, err := f.svc.UpdateCartQuantity(ctx, session, p.ID, 3_000_000_000); return err }, e.ErrInvalidDelta},
		{"update below column range", func() error { _, err := f.svc.UpdateCartQuantity(ctx, session, p.ID, -3_000_000_000); return err }, e.ErrInvalidDelta},
		{"update to zero units", func() error { _, err := f.svc.UpdateCartQuantity(ctx, session, p.ID, -2); return err }, e.ErrInvalidQuantity},
		{"update beyond stock", func() error { _, err := f.svc.UpdateCartQuantity(ctx, session, p.ID, 4); return err }, e.ErrInsufficientStock},
		{"update missing line", func() error { _, err := f.svc.UpdateCartQuantity(ctx, "other", p.ID, 1); return err }, e.ErrReservationNotFound},
		{"remove missing line", func() error { _, err := f.svc.RemoveFromCart(ctx, "other", p.ID); return err }, e.ErrReservationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.run(), tt.wantErr)
			assert.Equal(t, 3, f.stock(t, p.ID), "stock unchanged")
		})
	}
}

func TestClearCartReleasesEveryLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.product(t, 10), f.product(t, 10)
	session := gofakeit.UUID()

	_, err := f.svc.AddToCart(ctx, session, a.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, session, b.ID, 3)
	require.NoError(t, err)

	require.NoError(t, f.svc.ClearCart(ctx, session))
	assert.Equal(t, 10, f.stock(t, a.ID))
	assert.Equal(t, 10, f.stock(t, b.ID))

	c, err := f.svc.GetCart(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestClearCartPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.product(t, 10), f.product(t, 10)
	session := gofakeit.UUID()

	_, err := f.svc.AddToCart(ctx, session, a.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, session, b.ID, 3)
	require.NoError(t, err)

	flaky := newService(t, f.store, flakyProducts{ProductRepository: f.store.Products, failFor: a.ID})
	err = flaky.ClearCart(ctx, session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	var lineErr *LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, a.ID, lineErr.ProductID)

	assert.Equal(t, 8, f.stock(t, a.ID), "failed line keeps its reservation")
	assert.Equal(t, 10, f.stock(t, b.ID), "other lines are still released")

	c, err := f.svc.GetCart(ctx, session)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, a.ID, c.Items[0].ProductID)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestConcurrentAddsForLastUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 1)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AddToCart(ctx, gofakeit.UUID(), p.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, e.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, f.stock(t, p.ID))
}

func TestRandomSequencesConserveStock(t *testing.T) {
	for run := 0; run < 20; run++ {
		f := newFixture(t)
		ctx := context.Background()
		initial := gofakeit.Number(0, 15)
		p := f.product(t, initial)
		session := gofakeit.UUID()
		rng := rand.New(rand.NewPCG(uint64(run), 7))

		for step := 0; step < 40; step++ {
			switch rng.IntN(3) {
			case 0:
				_, _ = f.svc.AddToCart(ctx, session, p.ID, rng.IntN(4)+1)
			case 1:
				_, _ = f.svc.UpdateCartQuantity(ctx, session, p.ID, rng.IntN(7)-3)
			case 2:
				_, _ = f.svc.RemoveFromCart(ctx, session, p.ID)
			}

			c, err := f.svc.GetCart(ctx, session)
			require.NoError(t, err)
			stock := f.stock(t, p.ID)
			require.GreaterOrEqual(t, stock, 0)
			require.Equal(t, initial, stock+c.TotalUnits, "run %d step %d", run, step)
		}
	}
}

func TestCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.product(t, 5), f.product(t, 5)
	session := gofakeit.UUID()

	_, err := f.svc.AddToCart(ctx, session, a.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, session, b.ID, 2)
	require.NoError(t, err)

	order, err := f.svc.Checkout(ctx, session)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Len(t, order.Lines, 2)
	assert.Equal(t, a.PriceCents+2*b.PriceCents, order.TotalCents)

	assert.Equal(t, 4, f.stock(t, a.ID))
	assert.Equal(t, 3, f.stock(t, b.ID))

	c, err := f.svc.GetCart(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	_, err = f.svc.Checkout(ctx, session)
	require.ErrorIs(t, err, e.ErrCartEmpty)
}

func TestReleaseExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 10)

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }
	_, err := f.svc.AddToCart(ctx, "old", p.ID, 3)
	require.NoError(t, err)

	f.svc.now = func() time.Time { return start.Add(20 * time.Minute) }
	_, err = f.svc.AddToCart(ctx, "recent", p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, f.stock(t, p.ID))

	n, err := f.svc.ReleaseExpired(ctx, start.Add(31*time.Minute), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 8, f.stock(t, p.ID))

	old, err := f.svc.GetCart(ctx, "old")
	require.NoError(t, err)
	assert.Empty(t, old.Items)

	movements, _, err := f.store.Movements.GetByProductID(ctx, p.ID, repo.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, models.ReasonExpire, movements[0].Reason)
	assert.Equal(t, "old", movements[0].SessionID)
}
