package models

import "time"

type Vendor struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	StoreName    string    `json:"store_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
