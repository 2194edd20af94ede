// Package compliance evaluates transactions and statements against fixed
// Nigerian regulatory thresholds, independent of classification.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"time"

	"github.com/lekanlabs/taxmata/internal/model"
	"github.com/lekanlabs/taxmata/internal/service"
)

// Regulatory thresholds in naira.
const (
	relatedPartyThreshold = 5_000_000
	fxHighThreshold       = 10_000_000
	vatThreshold          = 25_000_000

	mixedAccountRatio = 0.20
	vatWarnRatio      = 0.70
	vatUrgentRatio    = 0.90
)

var (
	relatedPartyRegex = regexp.MustCompile(`(?i)director|chairman|shareholder|owner|spouse|wife|husband|brother|sister|family|subsidiary|affiliate|related part`)
	currencyRegex     = regexp.MustCompile(`(?i)\b(usd|gbp|eur|dollar|pound|euro|fx|forex|swift|domiciliary)\b`)
)

// Refs identifies the context a transaction is evaluated in.
type Refs struct {
	UserID      string
	BusinessID  string
	StatementID string
}

// Engine runs independent compliance sub-checks. Each sub-check tolerates
// a failed data lookup by omitting its flag rather than failing the whole
// evaluation.
type Engine struct {
	verdicts service.VerdictStore
	revenue  service.RevenueStore
	now      func() time.Time
}

// NewEngine creates a compliance engine. Either store may be nil; the
// sub-checks needing it are skipped.
func NewEngine(verdicts service.VerdictStore, revenue service.RevenueStore) *Engine {
	return &Engine{verdicts: verdicts, revenue: revenue, now: time.Now}
}

// Check evaluates one transaction in its statement/business context and
// returns zero or more flags.
func (e *Engine) Check(ctx context.Context, txn model.Transaction, refs Refs) []model.ComplianceFlag {
	var flags []model.ComplianceFlag

	if f := e.checkRelatedParty(txn); f != nil {
		flags = append(flags, *f)
	}
	if f := e.checkForeignCurrency(txn); f != nil {
		flags = append(flags, *f)
	}
	if f := e.checkMixedAccount(ctx, refs.StatementID); f != nil {
		flags = append(flags, *f)
	}
	if f := e.checkVATProximity(ctx, refs.BusinessID); f != nil {
		flags = append(flags, *f)
	}

	return flags
}

// checkRelatedParty flags large transfers whose narration suggests a
// related party. Fires strictly above the threshold: a transfer of
// exactly ₦5,000,000 does not trigger.
func (e *Engine) checkRelatedParty(txn model.Transaction) *model.ComplianceFlag {
	if txn.AbsAmount() <= relatedPartyThreshold {
		return nil
	}
	if !relatedPartyRegex.MatchString(txn.Description) {
		return nil
	}

	return &model.ComplianceFlag{
		Type:     model.FlagRelatedParty,
		Severity: model.SeverityHigh,
		Message:  fmt.Sprintf("Transfer of ₦%.2f matches related-party indicators", txn.AbsAmount()),
		Action:   "Document the counterparty relationship and board approval before filing",
	}
}

// checkForeignCurrency flags foreign-currency transactions; severity
// escalates for very large amounts.
func (e *Engine) checkForeignCurrency(txn model.Transaction) *model.ComplianceFlag {
	if !currencyRegex.MatchString(txn.Description) {
		return nil
	}

	severity := model.SeverityMedium
	if txn.AbsAmount() > fxHighThreshold {
		severity = model.SeverityHigh
	}

	return &model.ComplianceFlag{
		Type:     model.FlagForeignCurrency,
		Severity: severity,
		Message:  "Foreign currency transaction detected",
		Action:   "Keep CBN documentation and the FX conversion rate used",
	}
}

// checkMixedAccount flags statements where more than 20% of classified
// transactions are personal.
func (e *Engine) checkMixedAccount(ctx context.Context, statementID string) *model.ComplianceFlag {
	if e.verdicts == nil || statementID == "" {
		return nil
	}

	counts, err := e.verdicts.StatementClassCounts(ctx, statementID)
	if err != nil {
		slog.Debug("statement counts lookup failed, skipping mixed-account check",
			"statement_id", statementID,
			"error", err)
		return nil
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return nil
	}

	ratio := float64(counts[model.ClassPersonal]) / float64(total)
	if ratio <= mixedAccountRatio {
		return nil
	}

	return &model.ComplianceFlag{
		Type:     model.FlagMixedAccount,
		Severity: model.SeverityLow,
		Message:  fmt.Sprintf("%.0f%% of statement transactions look personal", ratio*100),
		Action:   "Consider separating personal spending from the business account",
	}
}

// checkVATProximity flags businesses approaching the VAT registration
// threshold on trailing-12-month sale revenue.
func (e *Engine) checkVATProximity(ctx context.Context, businessID string) *model.ComplianceFlag {
	if e.revenue == nil || businessID == "" {
		return nil
	}

	now := e.now()
	revenue, err := e.revenue.TrailingRevenue(ctx, businessID, now.AddDate(-1, 0, 0), now)
	if err != nil {
		slog.Debug("revenue lookup failed, skipping VAT proximity check",
			"business_id", businessID,
			"error", err)
		return nil
	}

	ratio := revenue / vatThreshold
	if ratio <= vatWarnRatio {
		return nil
	}

	monthlyAverage := revenue / 12
	if monthlyAverage <= 0 {
		return nil
	}

	severity := model.SeverityMedium
	if ratio > vatUrgentRatio {
		severity = model.SeverityHigh
	}

	monthsToBreach := int(math.Ceil((vatThreshold - revenue) / monthlyAverage))
	if monthsToBreach < 0 {
		monthsToBreach = 0
	}

	return &model.ComplianceFlag{
		Type:     model.FlagVATThreshold,
		Severity: severity,
		Message: fmt.Sprintf("Trailing revenue ₦%.0f is %.0f%% of the VAT registration threshold (est. %d month(s) to breach)",
			revenue, ratio*100, monthsToBreach),
		Action: "Prepare for VAT registration with FIRS",
	}
}
