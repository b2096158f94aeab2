package models

import "time"

type MovementReason string

const (
	ReasonReserve MovementReason = "reserve"
	ReasonRelease MovementReason = "release"
	ReasonExpire  MovementReason = "expire"
	ReasonRestock MovementReason = "restock"
)

type Movement struct {
	ID        int64          `json:"id"`
	ProductID int64          `json:"product_id"`
	Delta     int            `json:"delta"`
	Reason    MovementReason `json:"reason"`
	SessionID string         `json:"session_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
