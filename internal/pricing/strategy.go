package pricing

import (
	"hash/fnv"
	"strconv"
)

// stableHash must give the same value for the same string across process
// runs and machines, so generated quotes stay reproducible. FNV-1a fits.
func stableHash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// Multiplier computes the per-company quote inflation for a negotiation round.
// Round 0 lands in [1.50, 1.80), round 1 in [1.25, 1.45), later rounds in
// [1.10, 1.25). Deterministic for a given company name and round.
func Multiplier(companyName string, round int) float64 {
	switch {
	case round == 0:
		return 1.50 + float64(stableHash(companyName)%30)/100
	case round == 1:
		return 1.25 + float64(stableHash(companyName+strconv.Itoa(round))%20)/100
	default:
		return 1.10 + float64(stableHash(companyName+strconv.Itoa(round))%15)/100
	}
}

// SuggestedPrice inflates the hidden target price into the reference quote fed
// to generation. The generated text is not guaranteed to mention this exact
// number, which is why ExtractPrice runs on the result afterward.
func SuggestedPrice(companyName string, round int, targetPrice float64) float64 {
	return targetPrice * Multiplier(companyName, round)
}
