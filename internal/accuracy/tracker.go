// Package accuracy reports how well past classifications held up against
// user review.
package accuracy

import (
	"context"
	"fmt"
	"sort"

	"github.com/lekanlabs/taxmata/internal/model"
	"github.com/lekanlabs/taxmata/internal/service"
)

// Tracker aggregates verdict and correction history for reporting. It is
// strictly read-only and has no influence on classification.
type Tracker struct {
	corrections service.CorrectionStore
}

// NewTracker returns a tracker backed by the correction store.
func NewTracker(corrections service.CorrectionStore) *Tracker {
	return &Tracker{corrections: corrections}
}

// Stats returns the business's accuracy aggregation.
func (t *Tracker) Stats(ctx context.Context, businessID string) (*model.AccuracyStats, error) {
	stats, err := t.corrections.AccuracyStats(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accuracy stats for %s: %w", businessID, err)
	}
	return stats, nil
}

// SourceReport is one row of the per-source accuracy breakdown.
type SourceReport struct {
	Source   model.VerdictSource
	Reviewed int
	Accuracy float64
}

// SourceBreakdown flattens per-source accuracy into rows ordered worst
// first, so review effort lands where predictions are weakest.
func (t *Tracker) SourceBreakdown(ctx context.Context, businessID string) ([]SourceReport, error) {
	stats, err := t.Stats(ctx, businessID)
	if err != nil {
		return nil, err
	}

	reports := make([]SourceReport, 0, len(stats.BySource))
	for source, acc := range stats.BySource {
		reports = append(reports, SourceReport{
			Source:   source,
			Reviewed: acc.Reviewed,
			Accuracy: acc.Accuracy(),
		})
	}
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Accuracy != reports[j].Accuracy {
			return reports[i].Accuracy < reports[j].Accuracy
		}
		return reports[i].Source < reports[j].Source
	})
	return reports, nil
}
