package rules

import (
	"regexp"

	"github.com/lekanlabs/taxmata/internal/model"
)

// Amount floors for rules that only make sense above a threshold.
const (
	rentMinAmount      = 100_000
	equipmentMinAmount = 50_000
)

func re(pattern string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + pattern)
}

// defaultRules is the static Nigerian rule table, ordered by descending
// specificity. Direction-dependent behaviors are expressed as separate
// rules for each leg.
func defaultRules() []Rule {
	return []Rule{
		{
			Name:       "emtl_stamp_duty",
			regex:      re(`\bemtl\b|stamp duty|electronic money transfer levy`),
			Class:      model.ClassExpense,
			Category:   "bank_charge_emtl",
			Confidence: 0.98,
			Reasoning:  "Electronic Money Transfer Levy / stamp duty charge",
		},
		{
			Name:       "tax_payment",
			regex:      re(`\bfirs\b|\btax\b|\bpaye\b|\bvat\b|\bwht\b|withholding`),
			Direction:  debitOnly,
			Class:      model.ClassExpense,
			Category:   "tax_payment",
			Confidence: 0.95,
			Reasoning:  "Tax or FIRS payment",
		},
		{
			Name:       "salary_payroll",
			regex:      re(`salar(y|ies)|payroll|staff payment|wages`),
			Direction:  debitOnly,
			Class:      model.ClassSalary,
			Category:   "salary_expense",
			Confidence: 0.95,
			Reasoning:  "Salary or payroll payment",
		},
		{
			Name:       "marketing",
			regex:      re(`marketing|advertis|facebook ads|instagram ads|google ads|promotion`),
			Class:      model.ClassExpense,
			Category:   "marketing",
			Confidence: 0.95,
			Reasoning:  "Marketing or advertising spend",
		},
		{
			Name:       "bank_charges",
			regex:      re(`bank charge|commission|sms alert|maintenance fee|transfer fee|account fee`),
			Class:      model.ClassExpense,
			Category:   "bank_charges",
			Confidence: 0.95,
			Reasoning:  "Bank service charge",
		},
		{
			Name:       "atm_withdrawal",
			regex:      re(`\batm\b|cash withdrawal|cash w/d`),
			Direction:  debitOnly,
			Class:      model.ClassPersonal,
			Category:   "cash_withdrawal",
			Confidence: 0.90,
			Reasoning:  "ATM or cash withdrawal, usually personal",
		},
		{
			Name:       "loan_disbursement",
			regex:      re(`loan|facility|disbursement`),
			Direction:  creditOnly,
			Class:      model.ClassLoan,
			Category:   "loan_disbursement",
			Confidence: 0.90,
			Reasoning:  "Loan disbursement received",
		},
		{
			Name:       "loan_repayment",
			regex:      re(`loan|facility repay|repayment`),
			Direction:  debitOnly,
			Class:      model.ClassLoan,
			Category:   "loan_repayment",
			Confidence: 0.90,
			Reasoning:  "Loan repayment",
		},
		{
			Name:       "rent",
			regex:      re(`\brent\b|rental|lease`),
			Direction:  debitOnly,
			MinAmount:  rentMinAmount,
			Class:      model.ClassExpense,
			Category:   "rent",
			Confidence: 0.90,
			Reasoning:  "Rent payment above threshold",
		},
		{
			Name:       "pos_sale",
			regex:      re(`\bpos\b|point of sale|terminal`),
			Direction:  creditOnly,
			Class:      model.ClassSale,
			Category:   "pos_sale",
			Confidence: 0.85,
			Reasoning:  "POS settlement credit, likely sales revenue",
		},
		{
			Name:       "equipment_purchase",
			regex:      re(`equipment|generator|machine|laptop|computer|furniture|vehicle`),
			Direction:  debitOnly,
			MinAmount:  equipmentMinAmount,
			Class:      model.ClassCapital,
			Category:   "equipment_purchase",
			Confidence: 0.85,
			Reasoning:  "Equipment or capital asset purchase",
		},
		{
			Name:       "internet_subscription",
			regex:      re(`internet|starlink|spectranet|smile|broadband|wifi`),
			Direction:  debitOnly,
			Class:      model.ClassExpense,
			Category:   "internet",
			Confidence: 0.85,
			Reasoning:  "Internet subscription",
		},
		{
			Name:       "pos_purchase",
			regex:      re(`\bpos\b|point of sale|terminal`),
			Direction:  debitOnly,
			Class:      model.ClassExpense,
			Category:   "pos_purchase",
			Confidence: 0.80,
			Reasoning:  "POS purchase debit",
		},
		{
			Name:       "airtime_data",
			regex:      re(`airtime|data bundle|recharge|\bmtn\b|\bglo\b|airtel|9mobile`),
			Direction:  debitOnly,
			Class:      model.ClassExpense,
			Category:   "airtime_data",
			Confidence: 0.75,
			Reasoning:  "Airtime or data purchase",
		},
		{
			Name:       "utilities",
			regex:      re(`electricity|nepa|phcn|ikedc|ekedc|aedc|prepaid meter|water bill|utility`),
			Direction:  debitOnly,
			Class:      model.ClassExpense,
			Category:   "utilities",
			Confidence: 0.70,
			Reasoning:  "Utility payment; confirm business vs personal",
		},
		{
			Name:       "generic_transfer_in",
			regex:      re(`\btransfer\b|\btrf\b|\btfr\b`),
			Direction:  creditOnly,
			Class:      model.ClassSale,
			Category:   "transfer_in",
			Confidence: 0.60,
			Reasoning:  "Unlabelled inbound transfer; low confidence to force review",
		},
		{
			Name:       "generic_transfer_out",
			regex:      re(`\btransfer\b|\btrf\b|\btfr\b`),
			Direction:  debitOnly,
			Class:      model.ClassExpense,
			Category:   "transfer_out",
			Confidence: 0.60,
			Reasoning:  "Unlabelled outbound transfer; low confidence to force review",
		},
	}
}
