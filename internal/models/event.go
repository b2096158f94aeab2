package models

import "time"

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxProcessed  OutboxStatus = "processed"
)

const (
	EventStockAdjusted = "stock.adjusted"
	EventStockLow      = "stock.low"
)

type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   string
	ProductID   int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// StockEvent is the payload published for stock changes.
type StockEvent struct {
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	ProductID  int64          `json:"product_id"`
	Previous   int            `json:"previous_stock"`
	Current    int            `json:"new_stock"`
	Delta      int            `json:"delta"`
	Threshold  int            `json:"threshold,omitempty"`
	Reason     MovementReason `json:"reason"`
	SessionID  string         `json:"session_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
