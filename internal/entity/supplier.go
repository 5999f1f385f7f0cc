package entity

import (
	"github.com/google/uuid"
)

// db model
type Supplier struct {
	Id               uuid.UUID `json:"id" db:"id"`
	SessionId        uuid.UUID `json:"sessionId" db:"session_id"`
	CompanyName      string    `json:"companyName" db:"company_name"`
	Industry         string    `json:"industry" db:"industry"`
	InitialPrice     *float64  `json:"initialPrice" db:"initial_price"`
	FinalPrice       *float64  `json:"finalPrice" db:"final_price"`
	Status           string    `json:"status" db:"status"`
	NegotiationRound int       `json:"negotiationRound" db:"negotiation_round"`
	CreatedAt        string    `json:"createdAt" db:"created_at"`
}

// service + repo input model
type CreateSupplierInput struct {
	CompanyName    string // given
	Industry       string // given, session's industry category
	InitialMessage string // generated outbound buyer message, persisted with the supplier
	Status         string // should be set: "pending"
	// Id UUID sets automatically
	// NegotiationRound starts at 0
}

// service + repo input model for the advance transition.
// ObservedRound is the round the state machine read before generating; the
// repo refuses the write if the row moved on in the meantime.
type SupplierReplyInput struct {
	SupplierId      uuid.UUID
	ObservedRound   int
	Content         string
	PriceMentioned  float64
	SetInitialPrice bool
	NewStatus       string   // empty means leave as-is
	NewRound        *int     // set when the buyer counters
	BuyerContent    string   // counter message, required when NewRound is set
	FinalPrice      *float64 // set on round-2 finalization
}

// controller model
type SupplierOutputModel struct {
	Id               string               `json:"id"`
	CompanyName      string               `json:"company_name"`
	Status           string               `json:"status"`
	NegotiationRound int                  `json:"negotiation_round"`
	Messages         []MessageOutputModel `json:"messages"`
	Metrics          *SupplierMetrics     `json:"metrics,omitempty"`
}

// controller model, present only for completed suppliers with both prices
type SupplierMetrics struct {
	InitialPrice   string `json:"initial_price"`
	FinalPrice     string `json:"final_price"`
	Savings        string `json:"savings"`
	SavingsPercent string `json:"savings_percent"`
}
