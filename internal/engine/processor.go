package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lekanlabs/taxmata/internal/compliance"
	"github.com/lekanlabs/taxmata/internal/dedupe"
	"github.com/lekanlabs/taxmata/internal/model"
	"github.com/lekanlabs/taxmata/internal/service"
)

// Processor drives one statement's transactions through signal detection,
// the cascade and the compliance engine, persisting one verdict record per
// row in extraction order.
type Processor struct {
	detector   SignalDetector
	cascade    *Cascade
	compliance ComplianceChecker
	store      service.VerdictStore
}

// NewProcessor wires the statement pipeline.
func NewProcessor(detector SignalDetector, cascade *Cascade, checker ComplianceChecker, store service.VerdictStore) *Processor {
	return &Processor{
		detector:   detector,
		cascade:    cascade,
		compliance: checker,
		store:      store,
	}
}

// StatementResult summarizes one processed statement.
type StatementResult struct {
	Records       []model.VerdictRecord
	AvgConfidence float64
	NeedsReview   int
}

// ProcessStatement classifies and persists every transaction. Rows are
// processed in extraction order; a verdict-persistence failure is fatal to
// the statement (the enclosing job records it).
func (p *Processor) ProcessStatement(ctx context.Context, businessID, statementID string, txns []model.Transaction) (*StatementResult, error) {
	txns = dedupe.Transactions(txns)
	if len(txns) == 0 {
		return &StatementResult{}, nil
	}

	result := &StatementResult{Records: make([]model.VerdictRecord, 0, len(txns))}
	confidenceSum := 0.0

	for _, txn := range txns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		flags := p.detector.Detect(ctx, txn, businessID)
		verdict := p.cascade.Classify(ctx, txn, businessID, flags)

		var complianceFlags []model.ComplianceFlag
		if p.compliance != nil {
			complianceFlags = p.compliance.Check(ctx, txn, compliance.Refs{
				BusinessID:  businessID,
				StatementID: statementID,
			})
		}

		record := model.VerdictRecord{
			ID:           uuid.NewString(),
			BusinessID:   businessID,
			StatementID:  statementID,
			Transaction:  txn,
			Verdict:      verdict,
			Signals:      flags,
			Flags:        complianceFlags,
			NeedsReview:  verdict.Confidence < reviewThreshold || len(complianceFlags) > 0,
			ClassifiedAt: time.Now(),
		}

		if err := p.store.SaveVerdictRecord(ctx, &record); err != nil {
			return nil, fmt.Errorf("failed to persist verdict for transaction %q: %w", txn.Description, err)
		}

		if record.NeedsReview {
			result.NeedsReview++
		}
		confidenceSum += verdict.Confidence
		result.Records = append(result.Records, record)
	}

	result.AvgConfidence = confidenceSum / float64(len(result.Records))
	return result, nil
}
