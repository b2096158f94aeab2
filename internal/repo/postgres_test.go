package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fejiro0/gomart/internal/db"
	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/internal/repo"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type postgresStoreSuite struct {
	suite.Suite

	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
	store     *repo.Store
	vendor    models.Vendor
	category  models.Category
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container tests in short mode")
	}
	suite.Run(t, new(postgresStoreSuite))
}

func (s *postgresStoreSuite) SetupSuite() {
	ctx := s.T().Context()

	var err error
	s.container, err = postgres.Run(ctx, "postgres:17.6-alpine3.22", postgres.BasicWaitStrategies())
	s.Require().NoError(err)

	dsn, err := s.container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	applied, err := db.RunMigrations(dsn)
	s.Require().NoError(err)
	s.Require().True(applied)

	s.pool, err = pgxpool.New(ctx, dsn)
	s.Require().NoError(err)

	s.store, err = repo.NewPostgresStore(s.pool)
	s.Require().NoError(err)

	s.vendor, err = s.store.Vendors.Create(ctx, models.Vendor{
		Email:        gofakeit.Email(),
		StoreName:    gofakeit.Company(),
		PasswordHash: "x",
		IsActive:     true,
	})
	s.Require().NoError(err)

	s.category, err = s.store.Categories.GetOrCreate(ctx, "Electronics")
	s.Require().NoError(err)
}

func (s *postgresStoreSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *postgresStoreSuite) newProduct(stock, threshold int) models.Product {
	p, err := s.store.Products.Create(s.T().Context(), models.Product{
		VendorID:          s.vendor.ID,
		CategoryID:        s.category.ID,
		Name:              gofakeit.ProductName() + " " + gofakeit.UUID(),
		PriceCents:        int64(gofakeit.Number(100, 100000)),
		StockQuantity:     stock,
		LowStockThreshold: threshold,
	})
	s.Require().NoError(err)
	return p
}

func (s *postgresStoreSuite) TestProductRoundTrip() {
	t := s.T()
	ctx := t.Context()
	p := s.newProduct(4, 2)

	got, err := s.store.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)

	want := p
	want.CategoryName = s.category.Name
	if diff := cmp.Diff(want, got, cmpopts.EquateApproxTime(time.Second)); diff != "" {
		t.Errorf("product mismatch (-want +got):\n%s", diff)
	}

	_, err = s.store.Products.Create(ctx, p)
	require.ErrorIs(t, err, e.ErrDuplicatedValue)

	_, err = s.store.Products.GetByID(ctx, -1)
	require.ErrorIs(t, err, e.ErrProductNotFound)
}

func (s *postgresStoreSuite) TestAdjustStock() {
	p := s.newProduct(3, 2)

	tests := []struct {
		name      string
		productID int64
		delta     int
		want      models.StockChange
		wantErr   error
	}{
		{name: "decrement crossing threshold", productID: p.ID, delta: -2, want: models.StockChange{ProductID: p.ID, Previous: 3, Current: 1, Threshold: 2}},
		{name: "insufficient stock", productID: p.ID, delta: -2, wantErr: e.ErrInsufficientStock},
		{name: "restock", productID: p.ID, delta: 5, want: models.StockChange{ProductID: p.ID, Previous: 1, Current: 6, Threshold: 2}},
		{name: "past column maximum", productID: p.ID, delta: models.MaxQuantity, wantErr: e.ErrStockLimit},
		{name: "not found", productID: -1, delta: 1, wantErr: e.ErrProductNotFound},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()
			got, err := s.store.Products.AdjustStock(t.Context(), tt.productID, tt.delta)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func (s *postgresStoreSuite) TestAdjustStockConcurrentLastUnit() {
	t := s.T()
	ctx := t.Context()
	p := s.newProduct(1, 0)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Tx.Do(ctx, func(ctx context.Context) error {
				_, err := s.store.Products.AdjustStock(ctx, p.ID, -1)
				return err
			})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	got, err := s.store.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)
}

func (s *postgresStoreSuite) TestTransactionRollback() {
	t := s.T()
	ctx := t.Context()
	p := s.newProduct(5, 0)
	session := gofakeit.UUID()
	boom := errors.New("boom")

	err := s.store.Tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.store.Products.AdjustStock(ctx, p.ID, -2); err != nil {
			return err
		}
		if _, err := s.store.Reservations.Add(ctx, models.Reservation{
			SessionID: session, ProductID: p.ID, Quantity: 2, UnitPriceCents: p.PriceCents, ObservedStock: 3,
			ExpiresAt: time.Now().Add(time.Hour),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.store.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockQuantity)

	items, err := s.store.Reservations.ListBySession(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func (s *postgresStoreSuite) TestReservationLifecycle() {
	t := s.T()
	ctx := t.Context()
	p := s.newProduct(10, 0)
	session := gofakeit.UUID()
	expires := time.Now().Add(time.Hour).UTC()

	first, err := s.store.Reservations.Add(ctx, models.Reservation{
		SessionID: session, ProductID: p.ID, Quantity: 2, UnitPriceCents: p.PriceCents, ObservedStock: 8, ExpiresAt: expires,
	})
	require.NoError(t, err)

	second, err := s.store.Reservations.Add(ctx, models.Reservation{
		SessionID: session, ProductID: p.ID, Quantity: 1, UnitPriceCents: p.PriceCents, ObservedStock: 7, ExpiresAt: expires,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Quantity)

	second.Quantity = 1
	second.ObservedStock = 9
	updated, err := s.store.Reservations.SetQuantity(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Quantity)

	items, err := s.store.Reservations.ListBySession(ctx, session)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p.Name, items[0].ProductName)

	removed, err := s.store.Reservations.DeleteBySession(ctx, session)
	require.NoError(t, err)
	require.Len(t, removed, 1)

	_, err = s.store.Reservations.Get(ctx, session, p.ID)
	require.ErrorIs(t, err, e.ErrReservationNotFound)
}

func (s *postgresStoreSuite) TestDeleteExpired() {
	t := s.T()
	ctx := t.Context()
	p := s.newProduct(10, 0)
	now := time.Now().UTC()

	_, err := s.store.Reservations.Add(ctx, models.Reservation{
		SessionID: gofakeit.UUID(), ProductID: p.ID, Quantity: 1, UnitPriceCents: 1, ExpiresAt: now.Add(-time.Minute),
	})
	require.NoError(t, err)
	live, err := s.store.Reservations.Add(ctx, models.Reservation{
		SessionID: gofakeit.UUID(), ProductID: p.ID, Quantity: 1, UnitPriceCents: 1, ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	expired, err := s.store.Reservations.DeleteExpired(ctx, now, 100)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, p.ID, expired[0].ProductID)

	_, err = s.store.Reservations.Get(ctx, live.SessionID, p.ID)
	require.NoError(t, err)
}

func (s *postgresStoreSuite) TestOrdersAndMetrics() {
	t := s.T()
	ctx := t.Context()
	p := s.newProduct(5, 10)

	err := s.store.Tx.Do(ctx, func(ctx context.Context) error {
		_, err := s.store.Orders.Create(ctx, models.Order{
			ID:         gofakeit.UUID(),
			SessionID:  gofakeit.UUID(),
			TotalCents: 2 * p.PriceCents,
			Lines:      []models.OrderLine{{ProductID: p.ID, Quantity: 2, UnitPriceCents: p.PriceCents}},
		})
		return err
	})
	require.NoError(t, err)
	require.NoError(t, s.store.Movements.Log(ctx, models.Movement{ProductID: p.ID, Delta: -2, Reason: models.ReasonReserve, SessionID: "s"}))

	m, err := s.store.Metrics.GetDashboardMetrics(ctx, s.vendor.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, m.TotalProducts, 1)
	assert.GreaterOrEqual(t, m.LowStockCount, 1)
	assert.GreaterOrEqual(t, m.OrdersCount, 1)
	assert.GreaterOrEqual(t, m.UnitsSold, 2)
	assert.GreaterOrEqual(t, m.TotalMovements, 1)

	movements, total, err := s.store.Movements.GetByProductID(ctx, p.ID, repo.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, movements, 1)
	assert.Equal(t, "s", movements[0].SessionID)
}

func (s *postgresStoreSuite) TestOutboxClaim() {
	t := s.T()
	ctx := t.Context()

	ev, err := s.store.Outbox.Create(ctx, models.OutboxEvent{
		EventID: gofakeit.UUID(), EventType: models.EventStockLow, ProductID: 1, Payload: []byte(`{"ok":true}`),
	})
	require.NoError(t, err)

	claimed, err := s.store.Outbox.GetAndMarkAsProcessing(ctx, 100, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, claimed)

	again, err := s.store.Outbox.GetAndMarkAsProcessing(ctx, 100, time.Minute)
	require.NoError(t, err)
	for _, c := range again {
		assert.NotEqual(t, ev.ID, c.ID)
	}

	require.NoError(t, s.store.Outbox.MarkAsPending(ctx, ev.ID))
	retry, err := s.store.Outbox.GetAndMarkAsProcessing(ctx, 100, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, retry)
	for _, c := range retry {
		require.NoError(t, s.store.Outbox.MarkAsProcessed(ctx, c.ID))
	}
}
