package models

import "time"

// Reservation is a cart line item: a hold of Quantity units against a product's
// stock, owned by a cart session until it is checked out, removed or expires.
type Reservation struct {
	ID             int64     `json:"id"`
	SessionID      string    `json:"session_id"`
	ProductID      int64     `json:"product_id"`
	ProductName    string    `json:"product_name,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	ObservedStock  int       `json:"observed_stock"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (r Reservation) SubtotalCents() int64 {
	return int64(r.Quantity) * r.UnitPriceCents
}

type Cart struct {
	SessionID  string        `json:"session_id"`
	Items      []Reservation `json:"items"`
	TotalUnits int           `json:"total_units"`
	TotalCents int64         `json:"total_cents"`
}

func NewCart(sessionID string, items []Reservation) Cart {
	c := Cart{SessionID: sessionID, Items: items}
	if c.Items == nil {
		c.Items = []Reservation{}
	}
	for _, it := range c.Items {
		c.TotalUnits += it.Quantity
		c.TotalCents += it.SubtotalCents()
	}
	return c
}
