package capture

import (
	"regexp"
	"strconv"
	"strings"

	statex "github.com/wanderplan/wanderplan/agent/state"
)

// Deterministic fallback extraction. Intentionally narrow: it exists so state
// still progresses when the tool-driven path is skipped, and it may
// under-extract rather than guess.
var (
	originPattern      = regexp.MustCompile(`\bfrom\s+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*)`)
	destinationPattern = regexp.MustCompile(`\b(?:to|in)\s+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*)`)
	dateRangePattern   = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s*(?:to|until|through|-|–)\s*(\d{4}-\d{2}-\d{2})`)
	singleDatePattern  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	adultsPattern      = regexp.MustCompile(`(?i)\b(\d{1,2})\s+adults?\b`)
	symbolAmount       = regexp.MustCompile(`([₹$€£])\s?(\d+(?:,\d{3})*(?:\.\d+)?)`)
	codedAmount        = regexp.MustCompile(`(?i)\b(\d+(?:,\d{3})*(?:\.\d+)?)\s*(USD|EUR|INR|GBP|JPY|THB|AUD|CAD)\b`)
)

var currencyForSymbol = map[string]string{
	"₹": "INR",
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
}

// Extract pulls origin, destination, date range, traveler count and
// budget+currency from simple natural-language patterns.
func Extract(text string) statex.SlotPatch {
	var patch statex.SlotPatch

	if m := originPattern.FindStringSubmatch(text); m != nil {
		city := strings.TrimSpace(m[1])
		patch.OriginCity = &city
	}
	if m := destinationPattern.FindStringSubmatch(text); m != nil {
		city := strings.TrimSpace(m[1])
		if patch.OriginCity == nil || *patch.OriginCity != city {
			patch.DestinationCity = &city
		}
	}

	if m := dateRangePattern.FindStringSubmatch(text); m != nil {
		start, end := m[1], m[2]
		patch.StartDate = &start
		patch.EndDate = &end
	} else if m := singleDatePattern.FindString(text); m != "" {
		start := m
		patch.StartDate = &start
	}

	if m := adultsPattern.FindStringSubmatch(text); m != nil {
		if adults, err := strconv.Atoi(m[1]); err == nil && adults > 0 {
			patch.Adults = &adults
		}
	}

	if m := symbolAmount.FindStringSubmatch(text); m != nil {
		if amount, ok := parseAmount(m[2]); ok {
			currency := currencyForSymbol[m[1]]
			patch.BudgetAmount = &amount
			patch.Currency = &currency
		}
	} else if m := codedAmount.FindStringSubmatch(text); m != nil {
		if amount, ok := parseAmount(m[1]); ok {
			currency := strings.ToUpper(m[2])
			patch.BudgetAmount = &amount
			patch.Currency = &currency
		}
	}

	return patch
}

// ApplyFallback applies an Extract patch without letting the low-confidence
// path overwrite anything already captured: fields the trip knows are dropped
// from the patch first.
func ApplyFallback(trip *statex.TripContext, patch statex.SlotPatch) (string, bool, error) {
	if trip == nil {
		return Apply(trip, patch)
	}
	if trip.Origin != "" {
		patch.OriginCity = nil
	}
	if trip.DestinationCity != "" {
		patch.DestinationCity = nil
	}
	if trip.StartDate != "" {
		patch.StartDate = nil
	}
	if trip.EndDate != "" {
		patch.EndDate = nil
	}
	if trip.Adults > 0 {
		patch.Adults = nil
	}
	if trip.BudgetAmount > 0 {
		patch.BudgetAmount = nil
		patch.Currency = nil
	}
	return Apply(trip, patch)
}

func parseAmount(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	return amount, true
}
