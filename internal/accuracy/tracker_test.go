package accuracy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lekanlabs/taxmata/internal/model"
)

type stubCorrectionStore struct {
	stats *model.AccuracyStats
	err   error
}

func (s *stubCorrectionStore) SaveCorrection(context.Context, *model.Correction) error {
	return nil
}

func (s *stubCorrectionStore) AccuracyStats(context.Context, string) (*model.AccuracyStats, error) {
	return s.stats, s.err
}

func TestSourceBreakdown_WorstFirst(t *testing.T) {
	store := &stubCorrectionStore{stats: &model.AccuracyStats{
		BusinessID:    "biz-1",
		TotalVerdicts: 100,
		UserReviewed:  30,
		Corrected:     8,
		BySource: map[model.VerdictSource]model.SourceAccuracy{
			model.SourcePattern: {Reviewed: 10, Corrected: 1},
			model.SourceRule:    {Reviewed: 10, Corrected: 2},
			model.SourceAI:      {Reviewed: 10, Corrected: 5},
		},
	}}

	reports, err := NewTracker(store).SourceBreakdown(context.Background(), "biz-1")
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, model.SourceAI, reports[0].Source)
	assert.InDelta(t, 0.5, reports[0].Accuracy, 0.001)
	assert.Equal(t, model.SourceRule, reports[1].Source)
	assert.Equal(t, model.SourcePattern, reports[2].Source)
	assert.InDelta(t, 0.9, reports[2].Accuracy, 0.001)
}

func TestStats_PropagatesStoreFailure(t *testing.T) {
	store := &stubCorrectionStore{err: errors.New("db offline")}

	_, err := NewTracker(store).Stats(context.Background(), "biz-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "biz-1")
}
