package repo

import (
	"context"
	"sync"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Transactor runs fn as one unit of work. Repository calls made with the ctx
// passed to fn join that unit of work.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewPostgresTransactor returns a transaction manager whose transactions are
// picked up by the Postgres repositories through trmpgx.DefaultCtxGetter.
func NewPostgresTransactor(pool *pgxpool.Pool) (*manager.Manager, error) {
	return manager.New(trmpgx.NewDefaultFactory(pool))
}

type lockKey struct{}

// LockTransactor serializes units of work over the in-memory repositories.
// In-memory repositories never fail after a successful stock adjustment, so
// there is nothing to roll back.
type LockTransactor struct {
	mu sync.Mutex
}

func NewLockTransactor() *LockTransactor {
	return &LockTransactor{}
}

func (t *LockTransactor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(lockKey{}) != nil {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return fn(context.WithValue(ctx, lockKey{}, true))
}
