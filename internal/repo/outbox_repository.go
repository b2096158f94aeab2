package repo

import (
	"context"
	"time"

	"github.com/fejiro0/gomart/internal/models"
)

type OutboxRepository interface {
	Create(ctx context.Context, ev models.OutboxEvent) (models.OutboxEvent, error)
	// GetAndMarkAsProcessing claims up to limit pending events, plus events
	// stuck in processing for longer than staleAfter.
	GetAndMarkAsProcessing(ctx context.Context, limit int, staleAfter time.Duration) ([]models.OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	// MarkAsPending hands a claimed event back for another attempt.
	MarkAsPending(ctx context.Context, id int64) error
}
