// Package signals detects Nigeria-specific markers on statement transactions.
package signals

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/lekanlabs/taxmata/internal/model"
	"github.com/lekanlabs/taxmata/internal/service"
)

// Capital-injection detection thresholds.
const (
	capitalAttachThreshold = 0.70
	largeCreditThreshold   = 500_000
	veryLargeCredit        = 1_000_000
)

var (
	ussdRegex = regexp.MustCompile(`(?i)ussd|\*\d{3}[\d*#]*#`)
	posRegex  = regexp.MustCompile(`(?i)\bpos\b|pos trf|web pos|point of sale|terminal`)
	fxRegex   = regexp.MustCompile(`(?i)\b(usd|gbp|eur|dollar|pound|euro|fx|forex|swift|domiciliary|dom acct)\b`)

	// Mobile-money providers commonly seen in Nigerian statement narrations.
	mobileMoneyProviders = []string{
		"opay", "palmpay", "moniepoint", "kuda", "paga", "pocket app", "carbon",
	}

	equityKeywords = regexp.MustCompile(`(?i)capital|equity|investment|investor|shareholder|seed fund`)
	familyKeywords = regexp.MustCompile(`(?i)family support|from (mum|mom|dad|papa|mama|brother|sister|uncle|aunty|auntie)`)
	loanKeywords   = regexp.MustCompile(`(?i)\bloan\b|facility|borrow|lender|disbursement`)
)

// Detector inspects transaction descriptions and amounts for
// country-specific signals. Pure except for an optional business-context
// lookup used by the capital-injection heuristic.
type Detector struct {
	lookup service.BusinessLookup // may be nil
}

// NewDetector creates a detector. lookup may be nil; the capital-injection
// business-stage tier is skipped without it.
func NewDetector(lookup service.BusinessLookup) *Detector {
	return &Detector{lookup: lookup}
}

// Detect computes the signal flags for one transaction.
func (d *Detector) Detect(ctx context.Context, txn model.Transaction, businessID string) model.NigerianSignalFlags {
	desc := strings.ToLower(txn.Description)

	flags := model.NigerianSignalFlags{
		IsUSSD: ussdRegex.MatchString(desc),
	}

	for _, provider := range mobileMoneyProviders {
		if strings.Contains(desc, provider) {
			flags.MobileMoneyProvider = provider
			break
		}
	}

	if posRegex.MatchString(desc) {
		flags.IsPOS = true
		flags.POSTerminal = posRegex.FindString(desc)
	}

	if m := fxRegex.FindString(desc); m != "" {
		flags.IsForeignCurrency = true
		flags.CurrencyHint = strings.TrimSpace(m)
	}

	capType, confidence := d.detectCapitalInjection(ctx, txn, desc, businessID)
	if confidence >= capitalAttachThreshold {
		flags.IsCapitalInjection = true
		flags.CapitalType = capType
		flags.CapitalConfidence = confidence
	}

	return flags
}

// detectCapitalInjection evaluates three tiers and returns the
// highest-confidence result. A strong keyword match short-circuits the
// remaining tiers.
func (d *Detector) detectCapitalInjection(ctx context.Context, txn model.Transaction, desc, businessID string) (model.CapitalType, float64) {
	if !txn.IsCredit() {
		return "", 0
	}

	// Tier 1: explicit keywords
	switch {
	case equityKeywords.MatchString(desc):
		return model.CapitalEquity, 0.95
	case loanKeywords.MatchString(desc):
		return model.CapitalLoan, 0.90
	case familyKeywords.MatchString(desc):
		return model.CapitalFamilySupport, 0.85
	}

	bestType := model.CapitalType("")
	bestConfidence := 0.0

	// Tier 2: business-stage heuristic. Lookup failure silently omits the
	// tier rather than failing detection.
	if d.lookup != nil && businessID != "" {
		business, err := d.lookup.GetBusiness(ctx, businessID)
		if err != nil {
			slog.Debug("business lookup failed, skipping stage heuristic",
				"business_id", businessID,
				"error", err)
		} else if business != nil && !business.HasPriorRevenue &&
			(business.Stage == model.StagePreRevenue || business.Stage == model.StageEarly) &&
			txn.Amount() >= largeCreditThreshold && isRoundAmount(txn.Amount()) {
			confidence := 0.75
			if txn.Amount() >= veryLargeCredit {
				confidence = 0.80
			}
			bestType, bestConfidence = model.CapitalUnspecified, confidence
		}
	}

	// Tier 3: amount-shape heuristic
	if txn.Amount() >= veryLargeCredit && isRoundAmount(txn.Amount()) && bestConfidence < 0.65 {
		bestType, bestConfidence = model.CapitalUnspecified, 0.65
	}

	return bestType, bestConfidence
}

// isRoundAmount reports whether the amount looks like a deliberate round
// transfer (a multiple of ₦50,000).
func isRoundAmount(amount float64) bool {
	return math.Mod(amount, 50_000) == 0
}
