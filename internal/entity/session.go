package entity

import (
	"github.com/google/uuid"
)

// db model
type NegotiationSession struct {
	Id                    uuid.UUID `json:"id" db:"id"`
	OpportunityId         string    `json:"opportunityId" db:"opportunity_id"`
	OpportunityTitle      string    `json:"opportunityTitle" db:"opportunity_title"`
	OpportunityData       string    `json:"opportunityData" db:"opportunity_data"`
	TargetPrice           float64   `json:"targetPrice" db:"target_price"`
	ExtractedRequirements string    `json:"extractedRequirements" db:"extracted_requirements"`
	Status                string    `json:"status" db:"status"`
	CreatedAt             string    `json:"createdAt" db:"created_at"`
}

// service + repo input model
type CreateSessionInput struct {
	OpportunityId         string                // given
	OpportunityTitle      string                // given
	OpportunityData       string                // given, opportunity payload serialized verbatim
	TargetPrice           float64               // given
	ExtractedRequirements string                // serialized requirements, computed once
	Suppliers             []CreateSupplierInput // with their seeded initial buyer message
	Status                string                // should be set: "active"
	// Id UUID sets automatically
	// CreatedAt sets automatically
}

// service input model
type StartNegotiationInput struct {
	Opportunity            map[string]interface{} // raw opportunity payload, stored verbatim
	TargetPrice            float64                // hidden ceiling, never exposed to suppliers
	AdditionalRequirements string
	NumSuppliers           int
}

// controller model
type SessionOutputModel struct {
	Id            string                `json:"id"`
	OpportunityId string                `json:"opportunity_id"`
	Status        string                `json:"status"`
	CreatedAt     string                `json:"created_at"`
	Suppliers     []SupplierOutputModel `json:"suppliers"`
}
