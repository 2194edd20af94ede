package model

import "time"

// Class is the tax-relevant label assigned to a transaction.
type Class string

// Classification classes.
const (
	ClassSale     Class = "sale"
	ClassExpense  Class = "expense"
	ClassCapital  Class = "capital"
	ClassLoan     Class = "loan"
	ClassPersonal Class = "personal"
	ClassSalary   Class = "salary"
	ClassUnknown  Class = "unknown"
)

// Valid reports whether the class is one of the known labels.
func (c Class) Valid() bool {
	switch c {
	case ClassSale, ClassExpense, ClassCapital, ClassLoan, ClassPersonal, ClassSalary, ClassUnknown:
		return true
	}
	return false
}

// VerdictSource indicates which cascade stage produced a verdict.
type VerdictSource string

// Verdict sources.
const (
	SourcePattern VerdictSource = "pattern"
	SourceRule    VerdictSource = "rule"
	SourceAI      VerdictSource = "ai"
	SourceHybrid  VerdictSource = "hybrid"
	SourceUser    VerdictSource = "user"
)

// AIConfidenceCap is the maximum confidence an AI-sourced verdict may
// carry. Learned patterns and user corrections can always outrank it.
const AIConfidenceCap = 0.95

// ClassificationVerdict is the output of the classifier cascade for one
// transaction.
type ClassificationVerdict struct {
	Class      Class
	Category   string // Free-text sub-label, e.g. "bank_charge_emtl"
	Source     VerdictSource
	Reasoning  string
	Confidence float64
}

// Clamp forces confidence into [0,1] and additionally caps AI-sourced
// verdicts at AIConfidenceCap.
func (v *ClassificationVerdict) Clamp() {
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
	if v.Source == SourceAI && v.Confidence > AIConfidenceCap {
		v.Confidence = AIConfidenceCap
	}
}

// VerdictRecord is the persisted result for one transaction: the input
// row, the verdict, detected signals and compliance flags.
type VerdictRecord struct {
	ClassifiedAt time.Time
	ID           string
	BusinessID   string
	StatementID  string
	Transaction  Transaction
	Verdict      ClassificationVerdict
	Signals      NigerianSignalFlags
	Flags        []ComplianceFlag
	NeedsReview  bool
	UserReviewed bool
}
