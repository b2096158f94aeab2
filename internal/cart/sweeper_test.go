package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestSweepDrainsInBatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 10)

	start := time.Now()
	f.svc.now = func() time.Time { return start }
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		_, err := f.svc.AddToCart(ctx, s, p.ID, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, f.stock(t, p.ID))

	f.svc.now = func() time.Time { return start.Add(time.Hour) }
	w := NewSweeper(f.svc, time.Minute, 2, zaptest.NewLogger(t))

	assert.Equal(t, 5, w.Sweep(ctx))
	assert.Equal(t, 10, f.stock(t, p.ID))
	assert.Zero(t, w.Sweep(ctx))
}

func TestSweeperStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t)
	p := f.product(t, 3)

	start := time.Now()
	f.svc.now = func() time.Time { return start }
	_, err := f.svc.AddToCart(context.Background(), "gone", p.ID, 2)
	require.NoError(t, err)
	f.svc.now = func() time.Time { return start.Add(time.Hour) }

	ctx, cancel := context.WithCancel(context.Background())
	w := NewSweeper(f.svc, 5*time.Millisecond, 10, zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		got, err := f.store.Products.GetByID(context.Background(), p.ID)
		return err == nil && got.StockQuantity == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
