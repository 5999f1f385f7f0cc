package entity

import (
	"github.com/google/uuid"
)

// db model
type Message struct {
	Id             uuid.UUID `json:"id" db:"id"`
	SupplierId     uuid.UUID `json:"supplierId" db:"supplier_id"`
	Sender         string    `json:"sender" db:"sender"`
	Content        string    `json:"content" db:"content"`
	PriceMentioned *float64  `json:"priceMentioned" db:"price_mentioned"`
	CreatedAt      string    `json:"createdAt" db:"created_at"`
}

// controller model
type MessageOutputModel struct {
	Sender         string   `json:"sender"`
	Content        string   `json:"content"`
	PriceMentioned *float64 `json:"price_mentioned"`
	CreatedAt      string   `json:"created_at"`
}
