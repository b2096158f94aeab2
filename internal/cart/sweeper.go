package cart

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically returns the stock of abandoned carts.
type Sweeper struct {
	cart     *Service
	interval time.Duration
	batch    int
	log      *zap.Logger
}

func NewSweeper(cart *Service, interval time.Duration, batch int, log *zap.Logger) *Sweeper {
	return &Sweeper{cart: cart, interval: interval, batch: batch, log: log}
}

// Run sweeps every interval until ctx is cancelled.
func (w *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("reservation sweeper started", zap.Duration("interval", w.interval), zap.Int("batch", w.batch))
	for {
		select {
		case <-ctx.Done():
			w.log.Info("reservation sweeper stopped")
			return nil
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep drains expired reservations batch by batch and returns the number released.
func (w *Sweeper) Sweep(ctx context.Context) int {
	total := 0
	for ctx.Err() == nil {
		n, err := w.cart.ReleaseExpired(ctx, w.cart.now(), w.batch)
		if err != nil {
			w.log.Warn("sweep failed", zap.Error(err))
			break
		}
		total += n
		if n < w.batch {
			break
		}
	}

	if total > 0 {
		w.log.Info("released expired reservations", zap.Int("count", total))
	}
	return total
}
