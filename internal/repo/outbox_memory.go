package repo

import (
	"context"
	"sync"
	"time"

	"github.com/fejiro0/gomart/internal/models"
)

type InMemoryOutboxRepository struct {
	mu      sync.Mutex
	events  []models.OutboxEvent
	claimed map[int64]time.Time
}

func NewInMemoryOutboxRepository() *InMemoryOutboxRepository {
	return &InMemoryOutboxRepository{
		events:  []models.OutboxEvent{},
		claimed: map[int64]time.Time{},
	}
}

func (r *InMemoryOutboxRepository) Create(_ context.Context, ev models.OutboxEvent) (models.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev.ID = int64(len(r.events) + 1)
	ev.Status = models.OutboxPending
	ev.CreatedAt = time.Now().UTC()
	r.events = append(r.events, ev)
	return ev, nil
}

func (r *InMemoryOutboxRepository) GetAndMarkAsProcessing(_ context.Context, limit int, staleAfter time.Duration) ([]models.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	claimed := []models.OutboxEvent{}
	for i, ev := range r.events {
		if len(claimed) == limit {
			break
		}
		stale := ev.Status == models.OutboxProcessing && now.Sub(r.claimed[ev.ID]) > staleAfter
		if ev.Status != models.OutboxPending && !stale {
			continue
		}
		r.events[i].Status = models.OutboxProcessing
		r.claimed[ev.ID] = now
		claimed = append(claimed, r.events[i])
	}
	return claimed, nil
}

func (r *InMemoryOutboxRepository) MarkAsProcessed(_ context.Context, id int64) error {
	return r.transition(id, models.OutboxProcessed)
}

func (r *InMemoryOutboxRepository) MarkAsPending(_ context.Context, id int64) error {
	return r.transition(id, models.OutboxPending)
}

func (r *InMemoryOutboxRepository) transition(id int64, to models.OutboxStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.events {
		if r.events[i].ID != id || r.events[i].Status != models.OutboxProcessing {
			continue
		}
		r.events[i].Status = to
		delete(r.claimed, id)
		if to == models.OutboxProcessed {
			now := time.Now().UTC()
			r.events[i].ProcessedAt = &now
		}
	}
	return nil
}

// Events returns a copy of every stored event.
func (r *InMemoryOutboxRepository) Events() []models.OutboxEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.OutboxEvent, len(r.events))
	copy(out, r.events)
	return out
}
