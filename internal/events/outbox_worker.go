package events

import (
	"context"
	"strings"
	"time"

	"github.com/fejiro0/gomart/internal/repo"
	"go.uber.org/zap"
)

// staleAfter hands an event claimed by a worker that died back to the pool.
const staleAfter = 5 * time.Minute

// OutboxWorker publishes events written in the same transaction as the stock
// change that caused them. Delivery is at least once; consumers dedupe on
// event_id.
type OutboxWorker struct {
	repo      repo.OutboxRepository
	publisher Publisher
	interval  time.Duration
	batch     int
	log       *zap.Logger
}

func NewOutboxWorker(repo repo.OutboxRepository, publisher Publisher, interval time.Duration, batch int, log *zap.Logger) *OutboxWorker {
	return &OutboxWorker{
		repo:      repo,
		publisher: publisher,
		interval:  interval,
		batch:     batch,
		log:       log,
	}
}

// Run drains pending events on start and then every interval until ctx is
// cancelled.
func (w *OutboxWorker) Run(ctx context.Context) error {
	w.log.Info("draining pending outbox events on startup")
	w.Drain(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("outbox worker stopped")
			return nil
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain processes batches until one comes back short or fails.
func (w *OutboxWorker) Drain(ctx context.Context) {
	for ctx.Err() == nil {
		full, err := w.processBatch(ctx)
		if err != nil {
			w.log.Warn("outbox batch failed", zap.Error(err))
			return
		}
		if !full {
			return
		}
	}
}

func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.batch, staleAfter)
	if err != nil {
		return false, err
	}

	failed := 0
	for _, ev := range events {
		if err := w.publisher.Publish(ctx, ev); err != nil {
			failed++
			w.log.Warn("publish failed, will retry",
				zap.String("event_id", ev.EventID), zap.Bool("retryable", isRetryableError(err)), zap.Error(err))
			if err := w.repo.MarkAsPending(ctx, ev.ID); err != nil {
				w.log.Warn("mark pending failed", zap.Int64("id", ev.ID), zap.Error(err))
			}
			continue
		}
		if err := w.repo.MarkAsProcessed(ctx, ev.ID); err != nil {
			w.log.Warn("mark processed failed", zap.Int64("id", ev.ID), zap.Error(err))
		}
	}

	// a batch where everything failed would be claimed again immediately
	return len(events) == w.batch && failed < len(events), nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
