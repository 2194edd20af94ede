package learner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lekanlabs/taxmata/internal/model"
	"github.com/lekanlabs/taxmata/internal/service"
)

// Confidence blend weights: prediction accuracy dominates, volume and
// recency temper it.
const (
	accuracyWeight = 0.7
	volumeWeight   = 0.2
	recencyWeight  = 0.1

	volumeSaturation = 10 // occurrences at which volume contribution maxes out
)

// Learner owns all writes to the learned-pattern store.
type Learner struct {
	store service.PatternStore
	now   func() time.Time
}

// New creates a learner backed by the given pattern store.
func New(store service.PatternStore) *Learner {
	return &Learner{store: store, now: time.Now}
}

// UpdatePattern records one observation of (description → class/category)
// for a business. isCorrection marks observations that overturned a prior
// prediction; those do not count as correct predictions.
func (l *Learner) UpdatePattern(ctx context.Context, businessID, description string, class model.Class, category string, amount float64, isCorrection bool) error {
	normalized := Normalize(description)
	if normalized == "" {
		return fmt.Errorf("description %q normalizes to empty pattern", description)
	}

	pattern := model.LearnedPattern{
		BusinessID:  businessID,
		Pattern:     normalized,
		Category:    category,
		Class:       class,
		TotalAmount: amount,
		LastSeen:    l.now(),
	}
	if err := pattern.Validate(); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	// Occurrence counters are incremented atomically in the store; only
	// the derived confidence is computed here.
	updated, err := l.store.IncrementPattern(ctx, pattern, !isCorrection)
	if err != nil {
		return fmt.Errorf("failed to upsert pattern: %w", err)
	}

	confidence := model.PatternInitialConfidence
	if updated.Occurrences > 1 {
		confidence = BlendConfidence(updated.CorrectPredictions, updated.Occurrences, updated.LastSeen, l.now())
	}

	if err := l.store.SetPatternConfidence(ctx, updated.ID, confidence); err != nil {
		return fmt.Errorf("failed to store pattern confidence: %w", err)
	}

	slog.Debug("pattern updated",
		"business_id", businessID,
		"pattern", normalized,
		"class", class,
		"occurrences", updated.Occurrences,
		"confidence", confidence)

	return nil
}

// ApplyCorrection processes a user correction: the stored verdict record
// is marked reviewed, the correction is kept for accuracy reporting, and
// the pattern store learns the corrected label. A pattern-learning failure
// is logged but never blocks the correction itself.
func (l *Learner) ApplyCorrection(ctx context.Context, verdicts service.VerdictStore, corrections service.CorrectionStore, c model.Correction) error {
	if err := verdicts.MarkUserReviewed(ctx, c.RecordID, c.Corrected); err != nil {
		return fmt.Errorf("failed to mark record reviewed: %w", err)
	}

	if err := corrections.SaveCorrection(ctx, &c); err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}

	// A correction only counts against the learned pattern when the
	// pattern itself made the overturned prediction. Corrections of rule
	// or AI verdicts are confirmed observations of the corrected label.
	isCorrection := c.Original.Source == model.SourcePattern &&
		(c.Original.Class != c.Corrected.Class || c.Original.Category != c.Corrected.Category)
	if err := l.UpdatePattern(ctx, c.BusinessID, c.Description, c.Corrected.Class, c.Corrected.Category, c.Amount, isCorrection); err != nil {
		slog.Warn("pattern learning failed for correction",
			"record_id", c.RecordID,
			"error", err)
	}

	return nil
}

// BlendConfidence computes the weighted pattern confidence:
// 0.7·accuracy + 0.2·volume + 0.1·recency, clamped to [0.50, 0.99].
func BlendConfidence(correctPredictions, occurrences int, lastSeen, now time.Time) float64 {
	if occurrences <= 0 {
		return model.PatternConfidenceFloor
	}

	accuracy := float64(correctPredictions) / float64(occurrences)

	volume := float64(occurrences) / volumeSaturation
	if volume > 1 {
		volume = 1
	}

	confidence := accuracyWeight*accuracy + volumeWeight*volume + recencyWeight*recencyScore(lastSeen, now)

	if confidence < model.PatternConfidenceFloor {
		confidence = model.PatternConfidenceFloor
	}
	if confidence > model.PatternConfidenceCeiling {
		confidence = model.PatternConfidenceCeiling
	}
	return confidence
}

// recencyScore decays stepwise with the age of the last observation.
func recencyScore(lastSeen, now time.Time) float64 {
	age := now.Sub(lastSeen)
	switch {
	case age < 7*24*time.Hour:
		return 1.0
	case age < 30*24*time.Hour:
		return 0.8
	case age < 90*24*time.Hour:
		return 0.6
	case age < 180*24*time.Hour:
		return 0.4
	default:
		return 0.2
	}
}
