// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/lekanlabs/taxmata/internal/model"
)

// PatternStore provides access to learned (description → category)
// associations, scoped per business.
type PatternStore interface {
	// FindExactPattern returns the learned pattern matching the normalized
	// description exactly, or common.ErrNotFound.
	FindExactPattern(ctx context.Context, businessID, pattern string) (*model.LearnedPattern, error)
	// TopPatterns returns the business's highest-confidence patterns for
	// fuzzy matching.
	TopPatterns(ctx context.Context, businessID string, limit int) ([]model.LearnedPattern, error)
	// IncrementPattern atomically upserts a pattern occurrence at the
	// storage layer and returns the updated row. correct indicates the
	// occurrence confirms a prior prediction rather than correcting one.
	IncrementPattern(ctx context.Context, pattern model.LearnedPattern, correct bool) (*model.LearnedPattern, error)
	// SetPatternConfidence stores a recomputed confidence for a pattern.
	SetPatternConfidence(ctx context.Context, id int64, confidence float64) error
	// CountPatternsSince reports how many patterns were created after the
	// given instant.
	CountPatternsSince(ctx context.Context, since time.Time) (int, error)
}

// VerdictStore persists classified transactions.
type VerdictStore interface {
	SaveVerdictRecord(ctx context.Context, record *model.VerdictRecord) error
	GetVerdictRecord(ctx context.Context, id string) (*model.VerdictRecord, error)
	// MarkUserReviewed replaces the stored verdict with the user's and
	// flags the record as reviewed.
	MarkUserReviewed(ctx context.Context, id string, verdict model.ClassificationVerdict) error
	// StatementClassCounts returns the number of persisted verdicts per
	// class for one statement.
	StatementClassCounts(ctx context.Context, statementID string) (map[model.Class]int, error)
}

// RevenueStore exposes the revenue history the compliance engine needs.
type RevenueStore interface {
	// TrailingRevenue sums persisted sale amounts for the business inside
	// the window.
	TrailingRevenue(ctx context.Context, businessID string, from, to time.Time) (float64, error)
}

// BusinessLookup resolves optional business context.
type BusinessLookup interface {
	GetBusiness(ctx context.Context, id string) (*model.BusinessContext, error)
}

// BusinessStore persists business profiles.
type BusinessStore interface {
	BusinessLookup
	SaveBusiness(ctx context.Context, business *model.BusinessContext) error
}

// CorrectionStore records user corrections for accuracy reporting.
type CorrectionStore interface {
	SaveCorrection(ctx context.Context, correction *model.Correction) error
	AccuracyStats(ctx context.Context, businessID string) (*model.AccuracyStats, error)
}

// BatchStore persists batches and their jobs.
type BatchStore interface {
	CreateBatch(ctx context.Context, batch *model.Batch, jobs []model.BatchJob) error
	GetBatch(ctx context.Context, batchID string) (*model.Batch, []model.BatchJob, error)
	UpdateJob(ctx context.Context, job *model.BatchJob) error
}

// Storage is the full persistence contract implemented by the SQLite layer.
type Storage interface {
	PatternStore
	VerdictStore
	RevenueStore
	BusinessStore
	CorrectionStore
	BatchStore

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
