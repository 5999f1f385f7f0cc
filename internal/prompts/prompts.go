package prompts

import (
	"fmt"
	"strings"

	"sourcing-negotiation-api/internal/entity"
)

// Prompt pairs a system instruction with a user instruction for one
// completion call, together with the sampling temperature the call site uses.
type Prompt struct {
	System      string
	User        string
	Temperature float32
}

const historyWindow = 3

// FormatHistory renders the last few messages of a conversation as
// "sender: content" lines for inclusion in a prompt.
func FormatHistory(messages []entity.Message) string {
	start := 0
	if len(messages) > historyWindow {
		start = len(messages) - historyWindow
	}

	lines := make([]string, 0, historyWindow)
	for _, m := range messages[start:] {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Sender, m.Content))
	}

	return strings.Join(lines, "\n")
}

// ExtractRequirements asks for the 8-field requirements JSON object from a raw
// opportunity payload.
func ExtractRequirements(opportunityData string) Prompt {
	user := fmt.Sprintf(`Analyze this government contract opportunity and extract the key requirements:

%s

Extract and return a JSON object with:
1. "product_service": Main product or service needed (be specific)
2. "quantity": Estimated quantity if mentioned, otherwise "As specified in RFP"
3. "delivery_location": Where the work will be performed or delivered
4. "key_requirements": List of 3-5 most important requirements
5. "certifications_needed": Any certifications or clearances mentioned
6. "timeline": Delivery timeline or project duration
7. "industry_category": Best matching industry (tech, construction, services, supplies, etc.)
8. "suggested_suppliers": List of 5-7 realistic supplier company names for this type of work

Return ONLY the JSON object, no other text.`, opportunityData)

	return Prompt{
		System:      "You are an expert at analyzing government contracts and extracting requirements.",
		User:        user,
		Temperature: 0.3,
	}
}

// InitialRequest builds the outbound quote request for one supplier. The
// hidden target price is deliberately absent from the inputs.
func InitialRequest(opportunityData string, req *entity.ExtractedRequirements, companyName, additionalRequirements string) Prompt {
	user := fmt.Sprintf(`Write a professional quote request email for a government contract opportunity:

Product/Service: %s
Quantity: %s
Delivery Location: %s
Key Requirements: %s
Timeline: %s
Additional Requirements: %s
Extra Information For Complete Context: %s

To: %s

Important:
- Be professional and reference the government contract opportunity
- Make sure to mention any product/service, quantities or requirements that need to be mentioned
- Mention we're seeking competitive quotes from qualified suppliers
- Ask for detailed pricing breakdown, delivery timeline, and compliance with requirements
- Request information about relevant past performance
- DO NOT mention any specific budget or target price
- Keep under 200 words

Sign as "Procurement Team"`,
		req.ProductService, req.Quantity, req.DeliveryLocation,
		strings.Join(req.KeyRequirements, ", "), req.Timeline,
		additionalRequirements, opportunityData, companyName)

	return Prompt{
		System:      "You are a professional government procurement specialist.",
		User:        user,
		Temperature: 0.7,
	}
}

// SupplierReply builds the synthetic supplier's quote for the given round,
// anchored around a suggested price the strategy computed from the hidden
// target. The target itself never appears in the prompt.
func SupplierReply(companyName string, req *entity.ExtractedRequirements, history string, round int, suggestedPrice float64) Prompt {
	user := fmt.Sprintf(`You are a sales representative for %s, responding to a government contract RFP.

Contract Requirements:
- Product/Service: %s
- Quantity: %s
- Key Requirements: %s
- Timeline: %s

Previous conversation:
%s

This is negotiation round %d.
Your total pricing should be around $%.2f.

Guidelines:
- Round 0: Provide comprehensive initial quote with itemized pricing
- Round 1: Show flexibility, offer 10-20%% discount, mention volume benefits
- Round 2: Final best offer with smallest additional discount

Include:
- Itemized cost breakdown
- Delivery timeline
- Compliance with requirements
- Relevant past performance (make it realistic)
- Payment terms (Net 30 standard for government)

Be professional and detailed. Keep under 250 words.`,
		companyName, req.ProductService, req.Quantity,
		strings.Join(req.KeyRequirements, ", "), req.Timeline,
		history, round, suggestedPrice)

	return Prompt{
		System:      "You are an experienced government contractor sales representative.",
		User:        user,
		Temperature: 0.8,
	}
}

// BuyerCounter builds the buyer's counter message for round 1 or 2. Numeric
// figures stay out of it; only framing language is allowed.
func BuyerCounter(history string, req *entity.ExtractedRequirements, round int) Prompt {
	user := fmt.Sprintf(`You are negotiating a government contract for: %s
This is negotiation round %d of maximum 2.

Previous conversation:
%s

Guidelines:
- Round 1: Express that pricing exceeds available budget, ask for better terms
- Round 2: Final negotiation, mention competitive bids received, ask for best and final

Important:
- NEVER mention specific budget numbers or target prices
- Reference "budget constraints" or "competitive pricing" instead
- Mention you're evaluating multiple qualified suppliers
- Ask about additional value adds or services

Be professional and keep under 150 words.`,
		req.ProductService, round, history)

	return Prompt{
		System:      "You are a government procurement negotiator. Never reveal budget numbers.",
		User:        user,
		Temperature: 0.7,
	}
}

// AnalysisInstruction is the fixed procurement-analyst persona sent together
// with the uploaded solicitation documents. The reply must be JSON only.
const AnalysisInstruction = `You are now acting as my full-spectrum government contracting and sourcing expert. You specialize in working across all U.S. government agencies - including civilian, defense, and intelligence sectors - and you're proficient in interpreting solicitations from federal, state, and local governments.

Your job is to assist me through the entire sourcing and procurement process for government contracts. I will provide you with solicitation docs, and you will:

1. Read and Interpret the Solicitations
Analyze any solicitation documents (RFI, RFQ, RFP, IDIQ, BPA, etc.) and provide a plain-English summary of the requirement.
Identify the agency issuing it and explain the mission or goal of the procurement.
Highlight any critical requirements, special instructions, and mandatory compliance points.

2. Extract All Key Contract Data
From the solicitation, extract and organize the following:
Solicitation Number
NAICS Code(s)
PSC/FSC Code (if listed)
Set-aside Type (e.g., Small Business, 8(a), SDVOSB)
Contract Type (e.g., FFP, IDIQ, GSA Schedule)
Response Deadline and Submission Method
Evaluation Criteria (technical, price, past performance, etc.)
Product or Service Description (this is must)
Quantity, Units, and Delivery Schedule (this is must)
Contracting Officer or POC Contact Info
Any attachments or referenced FAR clauses

3. Identify and Understand the Product/Service
Break down exactly what product or service is being requested.
Translate technical language or obscure item descriptions into standard commercial equivalents.
If applicable, explain any relevant specifications, standards (e.g., MIL-SPEC, ANSI, ISO), or compliance certifications required.

4. Source the Product or Service
Use sourcing logic to locate the exact or equivalent item(s) being requested.
Search GSA Advantage, DLA, SAM.gov vendor lists, and major commercial suppliers (e.g., Grainger, Fastenal, McKesson, Dell, CDW).
Include relevant part numbers, prices, and lead times.

5. Find Suitable and Compliant Suppliers
Recommend 2-3 legitimate, cost-effective suppliers who meet the government's requirements.
Prefer vendors that are: U.S.-based, registered in SAM.gov, and classified as small business, 8(a), HUBZone, woman-owned, or veteran-owned (if the set-aside requires it).
Include links to supplier profiles or catalogs and reasons for each recommendation.

6. Price Comparison and Cost Optimization
Compare all pricing options and identify the lowest possible cost that still meets quality and compliance standards.
Include total cost breakdown (unit cost, shipping, tax, etc.)
Suggest whether to quote direct, use a distributor, or purchase via an existing contract vehicle (e.g., GSA Schedule, NASA SEWP, DLA TLSP).

7. Final Recommendations and Next Steps
Provide a summary of findings and a recommended sourcing path.
List next steps for me to take - e.g., gather compliance docs, contact supplier, submit capability statement, or prepare a quote.
If the opportunity is not viable, explain why and suggest alternatives.

Format:
Organize all output using clear section headers, bullet points, tables (if needed), and logical flow. Keep technical language concise but accurate. If the solicitation is missing key info, ask clarifying questions.

Return your response in JSON with appropriate fields. Do not use any conversational cues just strictly provide the required information in this json way:
<json field>: <related output text>`
