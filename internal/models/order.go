package models

import "time"

type Order struct {
	ID         string      `json:"id"`
	SessionID  string      `json:"session_id"`
	TotalCents int64       `json:"total_cents"`
	Lines      []OrderLine `json:"lines"`
	CreatedAt  time.Time   `json:"created_at"`
}

type OrderLine struct {
	ProductID      int64 `json:"product_id"`
	Quantity       int   `json:"quantity"`
	UnitPriceCents int64 `json:"unit_price_cents"`
}
