package repo

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the repositories of one backend with the Transactor that
// scopes units of work over them.
type Store struct {
	Tx           Transactor
	Products     ProductRepository
	Reservations ReservationRepository
	Movements    MovementRepository
	Vendors      VendorRepository
	Categories   CategoryRepository
	Orders       OrderRepository
	Outbox       OutboxRepository
	Metrics      MetricsRepository
}

func NewPostgresStore(pool *pgxpool.Pool) (*Store, error) {
	tx, err := NewPostgresTransactor(pool)
	if err != nil {
		return nil, err
	}

	return &Store{
		Tx:           tx,
		Products:     NewPostgresProductRepository(pool),
		Reservations: NewPostgresReservationRepository(pool),
		Movements:    NewPostgresMovementRepository(pool),
		Vendors:      NewPostgresVendorRepository(pool),
		Categories:   NewPostgresCategoryRepository(pool),
		Orders:       NewPostgresOrderRepository(pool),
		Outbox:       NewPostgresOutboxRepository(pool),
		Metrics:      NewPostgresMetricsRepository(pool),
	}, nil
}

func NewMemoryStore() *Store {
	products := NewInMemoryProductRepository()
	reservations := NewInMemoryReservationRepository(products)
	orders := NewInMemoryOrderRepository()
	movements := NewInMemoryMovementRepository()

	metrics := NewInMemoryMetricsRepository()
	metrics.SetRepositories(products, reservations, orders, movements)

	return &Store{
		Tx:           NewLockTransactor(),
		Products:     products,
		Reservations: reservations,
		Movements:    movements,
		Vendors:      NewInMemoryVendorRepository(),
		Categories:   NewInMemoryCategoryRepository(),
		Orders:       orders,
		Outbox:       NewInMemoryOutboxRepository(),
		Metrics:      metrics,
	}
}
