package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lekanlabs/taxmata/internal/common"
	"github.com/lekanlabs/taxmata/internal/model"
)

const patternColumns = `id, business_id, pattern, category, class,
	occurrences, correct_predictions, total_amount, confidence, last_seen`

// FindExactPattern returns the strongest learned pattern matching the
// normalized description, or common.ErrNotFound. A description may map to
// more than one category; the most confident association wins.
func (s *SQLiteStorage) FindExactPattern(ctx context.Context, businessID, pattern string) (*model.LearnedPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(businessID, "businessID"); err != nil {
		return nil, err
	}
	if err := validateString(pattern, "pattern"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM learned_patterns
		WHERE business_id = ? AND pattern = ?
		ORDER BY confidence DESC
		LIMIT 1`, patternColumns), businessID, pattern)

	p, err := scanPattern(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: pattern %q", common.ErrNotFound, pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pattern: %w", err)
	}
	return p, nil
}

// TopPatterns returns the business's highest-confidence patterns.
func (s *SQLiteStorage) TopPatterns(ctx context.Context, businessID string, limit int) ([]model.LearnedPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(businessID, "businessID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM learned_patterns
		WHERE business_id = ?
		ORDER BY confidence DESC, occurrences DESC
		LIMIT ?`, patternColumns), businessID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.LearnedPattern
	for rows.Next() {
		p, scanErr := scanPattern(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", scanErr)
		}
		patterns = append(patterns, *p)
	}
	return patterns, rows.Err()
}

// IncrementPattern records one observation of the pattern in a single
// statement, so concurrent jobs never lose counter updates. The caller
// recomputes confidence from the returned row.
func (s *SQLiteStorage) IncrementPattern(ctx context.Context, pattern model.LearnedPattern, correct bool) (*model.LearnedPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := pattern.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPattern, err)
	}

	correctDelta := 0
	if correct {
		correctDelta = 1
	}
	lastSeen := pattern.LastSeen
	if lastSeen.IsZero() {
		lastSeen = time.Now()
	}

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO learned_patterns
			(business_id, pattern, category, class, occurrences,
			 correct_predictions, total_amount, confidence, last_seen)
		VALUES (?, ?, ?, ?, 1, ?, ?, ?, ?)
		ON CONFLICT(business_id, pattern, category) DO UPDATE SET
			occurrences = occurrences + 1,
			correct_predictions = correct_predictions + excluded.correct_predictions,
			total_amount = total_amount + excluded.total_amount,
			class = excluded.class,
			last_seen = excluded.last_seen
		RETURNING %s`, patternColumns),
		pattern.BusinessID, pattern.Pattern, pattern.Category, string(pattern.Class),
		correctDelta, pattern.TotalAmount, model.PatternInitialConfidence, lastSeen)

	updated, err := scanPattern(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert pattern: %w", err)
	}
	return updated, nil
}

// SetPatternConfidence stores a recomputed confidence, clamped to the
// pattern bounds.
func (s *SQLiteStorage) SetPatternConfidence(ctx context.Context, id int64, confidence float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if confidence < model.PatternConfidenceFloor {
		confidence = model.PatternConfidenceFloor
	}
	if confidence > model.PatternConfidenceCeiling {
		confidence = model.PatternConfidenceCeiling
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE learned_patterns SET confidence = ? WHERE id = ?`, confidence, id)
	if err != nil {
		return fmt.Errorf("failed to update pattern confidence: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: pattern %d", common.ErrNotFound, id)
	}
	return nil
}

// CountPatternsSince reports how many patterns were created after the
// given instant.
func (s *SQLiteStorage) CountPatternsSince(ctx context.Context, since time.Time) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM learned_patterns WHERE created_at > ?`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count patterns: %w", err)
	}
	return count, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanPattern(row scanner) (*model.LearnedPattern, error) {
	var p model.LearnedPattern
	var class string
	err := row.Scan(&p.ID, &p.BusinessID, &p.Pattern, &p.Category, &class,
		&p.Occurrences, &p.CorrectPredictions, &p.TotalAmount, &p.Confidence, &p.LastSeen)
	if err != nil {
		return nil, err
	}
	p.Class = model.Class(class)
	return &p, nil
}
