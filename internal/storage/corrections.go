package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/lekanlabs/taxmata/internal/model"
)

// SaveCorrection records one user correction for accuracy reporting.
func (s *SQLiteStorage) SaveCorrection(ctx context.Context, correction *model.Correction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if correction == nil {
		return fmt.Errorf("%w: correction", ErrNilParameter)
	}
	if err := validateString(correction.RecordID, "correction.RecordID"); err != nil {
		return err
	}
	if err := validateString(correction.BusinessID, "correction.BusinessID"); err != nil {
		return err
	}

	createdAt := correction.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO corrections
			(record_id, business_id, description, amount,
			 original_class, original_category, original_source, original_confidence,
			 corrected_class, corrected_category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		correction.RecordID, correction.BusinessID, correction.Description, correction.Amount,
		string(correction.Original.Class), correction.Original.Category,
		string(correction.Original.Source), correction.Original.Confidence,
		string(correction.Corrected.Class), correction.Corrected.Category, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}
	return nil
}

// AccuracyStats aggregates verdict and correction history for a business.
func (s *SQLiteStorage) AccuracyStats(ctx context.Context, businessID string) (*model.AccuracyStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(businessID, "businessID"); err != nil {
		return nil, err
	}

	stats := &model.AccuracyStats{
		BusinessID: businessID,
		BySource:   make(map[model.VerdictSource]model.SourceAccuracy),
		ByClass:    make(map[model.Class]int),
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(user_reviewed), 0)
		FROM verdict_records WHERE business_id = ?`, businessID).
		Scan(&stats.TotalVerdicts, &stats.UserReviewed)
	if err != nil {
		return nil, fmt.Errorf("failed to count verdicts: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM corrections WHERE business_id = ?`, businessID).
		Scan(&stats.Corrected)
	if err != nil {
		return nil, fmt.Errorf("failed to count corrections: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT class, COUNT(*) FROM verdict_records
		WHERE business_id = ? GROUP BY class`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to count classes: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var class string
		var count int
		if err := rows.Scan(&class, &count); err != nil {
			return nil, fmt.Errorf("failed to scan class count: %w", err)
		}
		stats.ByClass[model.Class(class)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reviewed counts come from verdict records; corrected counts from the
	// correction log, keyed by the source that made the original call.
	reviewedRows, err := s.db.QueryContext(ctx, `
		SELECT r.source, COUNT(*),
			COALESCE((SELECT COUNT(*) FROM corrections c
				WHERE c.business_id = r.business_id AND c.original_source = r.source), 0)
		FROM verdict_records r
		WHERE r.business_id = ? AND r.user_reviewed = 1
		GROUP BY r.source`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate source accuracy: %w", err)
	}
	defer func() { _ = reviewedRows.Close() }()
	for reviewedRows.Next() {
		var source string
		var acc model.SourceAccuracy
		if err := reviewedRows.Scan(&source, &acc.Reviewed, &acc.Corrected); err != nil {
			return nil, fmt.Errorf("failed to scan source accuracy: %w", err)
		}
		stats.BySource[model.VerdictSource(source)] = acc
	}
	return stats, reviewedRows.Err()
}
