package model

// FlagSeverity grades a compliance flag.
type FlagSeverity string

// Flag severities.
const (
	SeverityLow    FlagSeverity = "low"
	SeverityMedium FlagSeverity = "medium"
	SeverityHigh   FlagSeverity = "high"
)

// Compliance flag types.
const (
	FlagRelatedParty    = "related_party_transaction"
	FlagForeignCurrency = "foreign_currency_transaction"
	FlagMixedAccount    = "mixed_personal_business"
	FlagVATThreshold    = "vat_threshold_approaching"
)

// ComplianceFlag marks a regulatory risk on a transaction or statement.
// Ephemeral: recomputed per evaluation, never mutated.
type ComplianceFlag struct {
	Type     string
	Severity FlagSeverity
	Message  string
	Action   string // Recommended action
}
