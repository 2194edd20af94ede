package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lekanlabs/taxmata/internal/common"
	"github.com/lekanlabs/taxmata/internal/model"
)

// SaveVerdictRecord persists one classified transaction. Signals and
// compliance flags are stored as JSON blobs; they are read back whole,
// never queried field by field.
func (s *SQLiteStorage) SaveVerdictRecord(ctx context.Context, record *model.VerdictRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateVerdictRecord(record); err != nil {
		return err
	}

	signals, err := json.Marshal(record.Signals)
	if err != nil {
		return fmt.Errorf("failed to encode signals: %w", err)
	}
	flags, err := json.Marshal(record.Flags)
	if err != nil {
		return fmt.Errorf("failed to encode flags: %w", err)
	}

	classifiedAt := record.ClassifiedAt
	if classifiedAt.IsZero() {
		classifiedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO verdict_records
			(id, business_id, statement_id, txn_date, txn_description,
			 txn_reference, txn_hash, txn_debit, txn_credit, txn_balance,
			 class, category, source, reasoning, confidence,
			 signals, flags, needs_review, user_reviewed, classified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.BusinessID, record.StatementID,
		record.Transaction.Date, record.Transaction.Description,
		record.Transaction.Reference, record.Transaction.Hash,
		record.Transaction.Debit, record.Transaction.Credit, record.Transaction.Balance,
		string(record.Verdict.Class), record.Verdict.Category,
		string(record.Verdict.Source), record.Verdict.Reasoning, record.Verdict.Confidence,
		string(signals), string(flags),
		record.NeedsReview, record.UserReviewed, classifiedAt)
	if err != nil {
		return fmt.Errorf("failed to save verdict record: %w", err)
	}
	return nil
}

// GetVerdictRecord loads one record by ID, or common.ErrNotFound.
func (s *SQLiteStorage) GetVerdictRecord(ctx context.Context, id string) (*model.VerdictRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, business_id, statement_id, txn_date, txn_description,
			txn_reference, txn_hash, txn_debit, txn_credit, txn_balance,
			class, category, source, reasoning, confidence,
			signals, flags, needs_review, user_reviewed, classified_at
		FROM verdict_records WHERE id = ?`, id)

	var record model.VerdictRecord
	var statementID, reference, reasoning sql.NullString
	var class, source, signals, flags string
	err := row.Scan(&record.ID, &record.BusinessID, &statementID,
		&record.Transaction.Date, &record.Transaction.Description,
		&reference, &record.Transaction.Hash,
		&record.Transaction.Debit, &record.Transaction.Credit, &record.Transaction.Balance,
		&class, &record.Verdict.Category, &source, &reasoning, &record.Verdict.Confidence,
		&signals, &flags, &record.NeedsReview, &record.UserReviewed, &record.ClassifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: verdict record %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load verdict record: %w", err)
	}

	record.StatementID = statementID.String
	record.Transaction.Reference = reference.String
	record.Verdict.Class = model.Class(class)
	record.Verdict.Source = model.VerdictSource(source)
	record.Verdict.Reasoning = reasoning.String

	if signals != "" {
		if err := json.Unmarshal([]byte(signals), &record.Signals); err != nil {
			return nil, fmt.Errorf("failed to decode signals: %w", err)
		}
	}
	if flags != "" {
		if err := json.Unmarshal([]byte(flags), &record.Flags); err != nil {
			return nil, fmt.Errorf("failed to decode flags: %w", err)
		}
	}
	return &record, nil
}

// MarkUserReviewed replaces the stored verdict with the user's label and
// flags the record as reviewed. The source column keeps the stage that
// made the original call; accuracy reporting depends on it.
func (s *SQLiteStorage) MarkUserReviewed(ctx context.Context, id string, verdict model.ClassificationVerdict) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if !verdict.Class.Valid() {
		return fmt.Errorf("%w: invalid class %q", ErrInvalidRecord, verdict.Class)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE verdict_records
		SET class = ?, category = ?, reasoning = ?, confidence = ?,
			user_reviewed = 1, needs_review = 0
		WHERE id = ?`,
		string(verdict.Class), verdict.Category,
		verdict.Reasoning, verdict.Confidence, id)
	if err != nil {
		return fmt.Errorf("failed to mark record reviewed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: verdict record %s", common.ErrNotFound, id)
	}
	return nil
}

// StatementClassCounts returns the number of persisted verdicts per class
// for one statement.
func (s *SQLiteStorage) StatementClassCounts(ctx context.Context, statementID string) (map[model.Class]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(statementID, "statementID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT class, COUNT(*) FROM verdict_records
		WHERE statement_id = ?
		GROUP BY class`, statementID)
	if err != nil {
		return nil, fmt.Errorf("failed to count statement classes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[model.Class]int)
	for rows.Next() {
		var class string
		var count int
		if err := rows.Scan(&class, &count); err != nil {
			return nil, fmt.Errorf("failed to scan class count: %w", err)
		}
		counts[model.Class(class)] = count
	}
	return counts, rows.Err()
}

// TrailingRevenue sums credited sale amounts for the business inside the
// window. Feeds the VAT-threshold check.
func (s *SQLiteStorage) TrailingRevenue(ctx context.Context, businessID string, from, to time.Time) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(businessID, "businessID"); err != nil {
		return 0, err
	}

	var revenue float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(txn_credit), 0) FROM verdict_records
		WHERE business_id = ? AND class = ? AND txn_credit IS NOT NULL
			AND txn_date >= ? AND txn_date < ?`,
		businessID, string(model.ClassSale), from, to).Scan(&revenue)
	if err != nil {
		return 0, fmt.Errorf("failed to sum trailing revenue: %w", err)
	}
	return revenue, nil
}
