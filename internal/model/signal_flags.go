package model

// CapitalType describes the likely nature of a capital injection.
type CapitalType string

// Capital injection sub-types.
const (
	CapitalEquity        CapitalType = "equity"
	CapitalFamilySupport CapitalType = "family_support"
	CapitalLoan          CapitalType = "loan"
	CapitalUnspecified   CapitalType = "unspecified"
)

// NigerianSignalFlags holds country-specific signals detected on a single
// transaction. Derived and stateless; recomputed per transaction.
type NigerianSignalFlags struct {
	MobileMoneyProvider string // Provider name, empty when not mobile money
	POSTerminal         string // Terminal hint text, empty when not POS
	CurrencyHint        string // Foreign currency token that matched
	CapitalType         CapitalType
	CapitalConfidence   float64
	IsUSSD              bool
	IsPOS               bool
	IsForeignCurrency   bool
	IsCapitalInjection  bool
}
