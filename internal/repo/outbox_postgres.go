package repo

import (
	"context"
	"fmt"
	"time"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

type PostgresOutboxRepository struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewPostgresOutboxRepository(pool *pgxpool.Pool) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{pool: pool, getter: trmpgx.DefaultCtxGetter}
}

func (r *PostgresOutboxRepository) Create(ctx context.Context, ev models.OutboxEvent) (models.OutboxEvent, error) {
	query := `
		INSERT INTO outbox_events (event_id, event_type, product_id, payload, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if ev.Status == "" {
		ev.Status = models.OutboxPending
	}

	err := r.getter.DefaultTrOrDB(ctx, r.pool).
		QueryRow(ctx, query, ev.EventID, ev.EventType, ev.ProductID, ev.Payload, ev.Status).
		Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return models.OutboxEvent{}, fmt.Errorf("%s: event with id %s already exists", whereami.WhereAmI(), ev.EventID)
		}
		return models.OutboxEvent{}, fmt.Errorf("%s: failed to insert event: %w", whereami.WhereAmI(), err)
	}
	return ev, nil
}

func (r *PostgresOutboxRepository) GetAndMarkAsProcessing(ctx context.Context, limit int, staleAfter time.Duration) ([]models.OutboxEvent, error) {
	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NOW()
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = $2
			   OR (status = $1 AND processing_started_at < NOW() - make_interval(secs => $4))
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_id, event_type, product_id, payload, status, created_at, processed_at
	`

	rows, err := r.pool.Query(ctx, query, models.OutboxProcessing, models.OutboxPending, limit, staleAfter.Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query pending events: %w", whereami.WhereAmI(), err)
	}
	defer rows.Close()

	events := []models.OutboxEvent{}
	for rows.Next() {
		var ev models.OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.EventID, &ev.EventType, &ev.ProductID, &ev.Payload,
			&ev.Status, &ev.CreatedAt, &ev.ProcessedAt); err != nil {
			return nil, fmt.Errorf("%s: failed to scan event: %w", whereami.WhereAmI(), err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iterator error: %w", whereami.WhereAmI(), err)
	}

	return events, nil
}

func (r *PostgresOutboxRepository) MarkAsProcessed(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processed_at = NOW()
		WHERE id = $2 AND status = $3
	`
	// zero rows: another worker already finished it
	if _, err := r.pool.Exec(ctx, query, models.OutboxProcessed, id, models.OutboxProcessing); err != nil {
		return fmt.Errorf("%s: failed to mark event %d as processed: %w", whereami.WhereAmI(), id, err)
	}
	return nil
}

func (r *PostgresOutboxRepository) MarkAsPending(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NULL
		WHERE id = $2 AND status = $3
	`
	if _, err := r.pool.Exec(ctx, query, models.OutboxPending, id, models.OutboxProcessing); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}
