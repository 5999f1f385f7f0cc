package pricing

import (
	"regexp"
	"strconv"
	"strings"
)

// Label-anchored patterns checked in priority order against lowercased text.
// The last match of the first pattern that fires is taken, since suppliers
// tend to restate the total at the end of a message.
var totalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`total:?\s*\$?([\d,]+\.?\d*)`),
	regexp.MustCompile(`total\s*(?:cost|price|amount):?\s*\$?([\d,]+\.?\d*)`),
	regexp.MustCompile(`grand\s*total:?\s*\$?([\d,]+\.?\d*)`),
	regexp.MustCompile(`\$?([\d,]+\.?\d*)\s*total`),
	regexp.MustCompile(`quoted\s*(?:price|amount):?\s*\$?([\d,]+\.?\d*)`),
}

var dollarAmountPattern = regexp.MustCompile(`\$?([\d,]+\.?\d*)`)

// fallbackFloor filters out line items like fees and shipping when no labeled
// total is present. The threshold is part of the observable contract.
const fallbackFloor = 100

// ExtractPrice recovers the single most likely quoted total from free text.
// Returns false when no candidate survives either pass.
func ExtractPrice(content string) (float64, bool) {
	contentLower := strings.ToLower(content)

	for _, pattern := range totalPatterns {
		matches := pattern.FindAllStringSubmatch(contentLower, -1)
		if len(matches) == 0 {
			continue
		}

		priceStr := strings.ReplaceAll(matches[len(matches)-1][1], ",", "")
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			continue
		}

		return price, true
	}

	// Fallback: any dollar-amount-shaped token above the floor, max wins.
	best, found := 0.0, false
	for _, match := range dollarAmountPattern.FindAllStringSubmatch(content, -1) {
		val, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil || val <= fallbackFloor {
			continue
		}
		if !found || val > best {
			best, found = val, true
		}
	}

	return best, found
}
