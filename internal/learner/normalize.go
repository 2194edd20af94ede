// Package learner turns user corrections into learned per-business
// description patterns with weighted confidence.
package learner

import (
	"regexp"
	"strings"
)

var (
	// Date-like substrings: 12/10/2025, 2025-10-12, 12-10-25, "14 Oct 2025".
	dateRegex = regexp.MustCompile(`(?i)\b\d{1,4}[-/]\d{1,2}[-/]\d{1,4}\b|\b\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s*\d{0,4}\b`)

	// Currency amounts and bare numbers: ₦1,000.00, NGN 500, 1234.56.
	amountRegex = regexp.MustCompile(`(?i)(?:₦|ngn\s?|n\s?)?\d[\d,]*(?:\.\d+)?`)

	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Normalize reduces a raw description to a stable pattern key: amounts and
// date-like substrings stripped, lowercased, whitespace collapsed.
func Normalize(description string) string {
	s := strings.ToLower(description)
	s = dateRegex.ReplaceAllString(s, " ")
	s = amountRegex.ReplaceAllString(s, " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
