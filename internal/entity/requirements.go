package entity

// ExtractedRequirements is computed once at session creation and stored as
// serialized text on the session row. It is never recomputed.
type ExtractedRequirements struct {
	ProductService       string   `json:"product_service"`
	Quantity             string   `json:"quantity"`
	DeliveryLocation     string   `json:"delivery_location"`
	KeyRequirements      []string `json:"key_requirements"`
	CertificationsNeeded []string `json:"certifications_needed"`
	Timeline             string   `json:"timeline"`
	IndustryCategory     string   `json:"industry_category"`
	SuggestedSuppliers   []string `json:"suggested_suppliers"`
}

// DefaultRequirements is the substitute record used when the extraction
// response is not valid structured data.
func DefaultRequirements(opportunityTitle string) *ExtractedRequirements {
	if opportunityTitle == "" {
		opportunityTitle = "Government Contract Services"
	}

	return &ExtractedRequirements{
		ProductService:       opportunityTitle,
		Quantity:             "As specified in RFP",
		DeliveryLocation:     "As specified",
		KeyRequirements:      []string{"Meet all RFP requirements", "Timely delivery", "Quality assurance"},
		CertificationsNeeded: []string{"As required"},
		Timeline:             "As per contract",
		IndustryCategory:     "services",
		SuggestedSuppliers: []string{
			"Federal Contractors Inc", "Government Solutions LLC",
			"Contract Services Corp", "Public Sector Partners",
			"Federal Supply Company",
		},
	}
}
