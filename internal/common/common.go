package common

const (
	SessionActive = "active"

	SupplierPending     = "pending"
	SupplierNegotiating = "negotiating"
	SupplierCompleted   = "completed"

	SenderBuyer    = "buyer"
	SenderSupplier = "supplier"
)

// MaxNegotiationRound bounds the buyer/supplier round counter.
const MaxNegotiationRound = 2
