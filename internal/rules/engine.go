// Package rules implements the static heuristic rule stage of the
// classifier cascade.
package rules

import (
	"regexp"

	"github.com/lekanlabs/taxmata/internal/model"
)

// direction constrains a rule to one side of the ledger.
type direction int

const (
	anyDirection direction = iota
	creditOnly
	debitOnly
)

// Rule matches a transaction description (and optionally amount/direction)
// and produces a verdict with a fixed confidence.
type Rule struct {
	Name       string
	regex      *regexp.Regexp
	Direction  direction
	MinAmount  float64 // 0 means no amount floor
	Class      model.Class
	Category   string
	Confidence float64
	Reasoning  string
}

// matches checks the transaction against this rule.
func (r *Rule) matches(txn model.Transaction) bool {
	if r.Direction == creditOnly && !txn.IsCredit() {
		return false
	}
	if r.Direction == debitOnly && txn.IsCredit() {
		return false
	}
	if r.MinAmount > 0 && txn.AbsAmount() < r.MinAmount {
		return false
	}
	return r.regex.MatchString(txn.Description)
}

// Engine evaluates the static rule table top to bottom; the first match
// wins. Rules never combine.
type Engine struct {
	rules []Rule
}

// NewEngine creates a rule engine with the default Nigerian rule table.
func NewEngine() *Engine {
	return &Engine{rules: defaultRules()}
}

// NewEngineWithRules creates a rule engine with a custom table, ordered by
// descending specificity.
func NewEngineWithRules(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Classify returns the verdict of the first matching rule, or false when
// no rule matched.
func (e *Engine) Classify(txn model.Transaction) (model.ClassificationVerdict, bool) {
	for i := range e.rules {
		rule := &e.rules[i]
		if !rule.matches(txn) {
			continue
		}

		verdict := model.ClassificationVerdict{
			Class:      rule.Class,
			Category:   rule.Category,
			Source:     model.SourceRule,
			Confidence: rule.Confidence,
			Reasoning:  rule.Reasoning,
		}

		verdict.Clamp()
		return verdict, true
	}

	return model.ClassificationVerdict{}, false
}

// RuleCount returns the number of rules in the table.
func (e *Engine) RuleCount() int {
	return len(e.rules)
}
