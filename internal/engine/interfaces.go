package engine

import (
	"context"

	"github.com/lekanlabs/taxmata/internal/compliance"
	"github.com/lekanlabs/taxmata/internal/model"
)

// RuleClassifier is the static rule stage.
type RuleClassifier interface {
	Classify(txn model.Transaction) (model.ClassificationVerdict, bool)
}

// AIClassifier is the final cascade stage. It always answers; failure
// handling is internal to the adapter.
type AIClassifier interface {
	Classify(ctx context.Context, txn model.Transaction, flags model.NigerianSignalFlags, business *model.BusinessContext) model.ClassificationVerdict
}

// SignalDetector computes country-specific flags for a transaction.
type SignalDetector interface {
	Detect(ctx context.Context, txn model.Transaction, businessID string) model.NigerianSignalFlags
}

// ComplianceChecker evaluates regulatory sub-checks.
type ComplianceChecker interface {
	Check(ctx context.Context, txn model.Transaction, refs compliance.Refs) []model.ComplianceFlag
}
