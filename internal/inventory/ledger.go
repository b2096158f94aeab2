// Package inventory moves stock. Every change goes through Ledger so that the
// stock row, the movement log and the outbox are written in one unit of work.
package inventory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/internal/repo"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Invalidator drops cached copies of products whose stock changed.
type Invalidator interface {
	DeleteProducts(ctx context.Context, ids []int64) error
}

type Ledger struct {
	products  repo.ProductRepository
	movements repo.MovementRepository
	outbox    repo.OutboxRepository
	log       *zap.Logger
	now       func() time.Time
}

func NewLedger(products repo.ProductRepository, movements repo.MovementRepository, outbox repo.OutboxRepository, log *zap.Logger) *Ledger {
	return &Ledger{
		products:  products,
		movements: movements,
		outbox:    outbox,
		log:       log,
		now:       time.Now,
	}
}

// Apply adjusts stock by delta and records why. It must run inside a
// Transactor unit of work; a failure leaves nothing behind once that unit of
// work rolls back.
func (l *Ledger) Apply(ctx context.Context, productID int64, delta int, reason models.MovementReason, sessionID string) (models.StockChange, error) {
	const op = "Ledger.Apply"

	change, err := l.products.AdjustStock(ctx, productID, delta)
	if err != nil {
		return models.StockChange{}, e.Wrap(op, err)
	}

	now := l.now().UTC()
	if err := l.movements.Log(ctx, models.Movement{
		ProductID: productID,
		Delta:     delta,
		Reason:    reason,
		SessionID: sessionID,
		CreatedAt: now,
	}); err != nil {
		return models.StockChange{}, e.Wrap(op, err)
	}

	if err := l.enqueue(ctx, models.EventStockAdjusted, change, reason, sessionID, now); err != nil {
		return models.StockChange{}, e.Wrap(op, err)
	}

	if change.CrossedBelowThreshold() {
		l.log.Warn("product is below its low stock threshold",
			zap.Int64("product_id", productID),
			zap.Int("stock", change.Current),
			zap.Int("threshold", change.Threshold),
		)
		if err := l.enqueue(ctx, models.EventStockLow, change, reason, sessionID, now); err != nil {
			return models.StockChange{}, e.Wrap(op, err)
		}
	}

	return change, nil
}

func (l *Ledger) enqueue(ctx context.Context, eventType string, change models.StockChange, reason models.MovementReason, sessionID string, at time.Time) error {
	ev := models.StockEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		ProductID:  change.ProductID,
		Previous:   change.Previous,
		Current:    change.Current,
		Delta:      change.Delta(),
		Reason:     reason,
		SessionID:  sessionID,
		OccurredAt: at,
	}
	if eventType == models.EventStockLow {
		ev.Threshold = change.Threshold
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	_, err = l.outbox.Create(ctx, models.OutboxEvent{
		EventID:   ev.EventID,
		EventType: eventType,
		ProductID: change.ProductID,
		Payload:   payload,
		Status:    models.OutboxPending,
	})
	return err
}
