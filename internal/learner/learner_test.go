package learner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lekanlabs/taxmata/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips currency amounts",
			in:   "Transfer of ₦25,000.00 to Chidi",
			want: "transfer of to chidi",
		},
		{
			name: "strips ngn prefix amounts",
			in:   "POS purchase NGN 4500 Shoprite",
			want: "pos purchase shoprite",
		},
		{
			name: "strips slash dates",
			in:   "Salary payment 28/10/2025",
			want: "salary payment",
		},
		{
			name: "strips iso dates",
			in:   "rent 2025-10-01 landlord",
			want: "rent landlord",
		},
		{
			name: "collapses whitespace and lowercases",
			in:   "  TRANSFER   TO  CHIDI ",
			want: "transfer to chidi",
		},
		{
			name: "identical after repeated normalization",
			in:   "transfer to chidi",
			want: "transfer to chidi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestBlendConfidence(t *testing.T) {
	now := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)

	tests := []struct {
		name        string
		correct     int
		occurrences int
		lastSeen    time.Time
		want        float64
	}{
		{
			name:        "perfect accuracy low volume",
			correct:     2,
			occurrences: 2,
			lastSeen:    recent,
			want:        0.7 + 0.2*0.2 + 0.1*1.0, // 0.84
		},
		{
			name:        "perfect accuracy at three observations crosses pattern threshold",
			correct:     3,
			occurrences: 3,
			lastSeen:    recent,
			want:        0.7 + 0.2*0.3 + 0.1*1.0, // 0.86
		},
		{
			name:        "saturated volume clamps at ceiling",
			correct:     20,
			occurrences: 20,
			lastSeen:    recent,
			want:        model.PatternConfidenceCeiling,
		},
		{
			name:        "zero accuracy clamps at floor",
			correct:     0,
			occurrences: 5,
			lastSeen:    recent,
			want:        model.PatternConfidenceFloor,
		},
		{
			name:        "stale pattern decays",
			correct:     10,
			occurrences: 10,
			lastSeen:    now.Add(-200 * 24 * time.Hour),
			want:        0.7 + 0.2 + 0.1*0.2, // 0.92
		},
		{
			name:        "mid decay band",
			correct:     10,
			occurrences: 10,
			lastSeen:    now.Add(-45 * 24 * time.Hour),
			want:        0.7 + 0.2 + 0.1*0.6, // 0.96
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlendConfidence(tt.correct, tt.occurrences, tt.lastSeen, now)
			assert.InDelta(t, tt.want, got, 0.0001)
			assert.GreaterOrEqual(t, got, model.PatternConfidenceFloor)
			assert.LessOrEqual(t, got, model.PatternConfidenceCeiling)
		})
	}
}

// fakePatternStore implements service.PatternStore in memory with the same
// increment semantics as the SQLite layer.
type fakePatternStore struct {
	patterns map[string]*model.LearnedPattern
	nextID   int64
	incErr   error
	confErr  error
}

func newFakePatternStore() *fakePatternStore {
	return &fakePatternStore{patterns: make(map[string]*model.LearnedPattern)}
}

func (f *fakePatternStore) key(businessID, pattern, category string) string {
	return businessID + "|" + pattern + "|" + category
}

func (f *fakePatternStore) FindExactPattern(_ context.Context, businessID, pattern string) (*model.LearnedPattern, error) {
	for _, p := range f.patterns {
		if p.BusinessID == businessID && p.Pattern == pattern {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePatternStore) TopPatterns(_ context.Context, businessID string, _ int) ([]model.LearnedPattern, error) {
	var out []model.LearnedPattern
	for _, p := range f.patterns {
		if p.BusinessID == businessID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePatternStore) IncrementPattern(_ context.Context, pattern model.LearnedPattern, correct bool) (*model.LearnedPattern, error) {
	if f.incErr != nil {
		return nil, f.incErr
	}
	k := f.key(pattern.BusinessID, pattern.Pattern, pattern.Category)
	existing, ok := f.patterns[k]
	if !ok {
		f.nextID++
		created := pattern
		created.ID = f.nextID
		created.Occurrences = 1
		if correct {
			created.CorrectPredictions = 1
		}
		created.Confidence = model.PatternInitialConfidence
		f.patterns[k] = &created
		out := created
		return &out, nil
	}
	existing.Occurrences++
	if correct {
		existing.CorrectPredictions++
	}
	existing.TotalAmount += pattern.TotalAmount
	existing.LastSeen = pattern.LastSeen
	out := *existing
	return &out, nil
}

func (f *fakePatternStore) SetPatternConfidence(_ context.Context, id int64, confidence float64) error {
	if f.confErr != nil {
		return f.confErr
	}
	for _, p := range f.patterns {
		if p.ID == id {
			p.Confidence = confidence
		}
	}
	return nil
}

func (f *fakePatternStore) CountPatternsSince(_ context.Context, _ time.Time) (int, error) {
	return len(f.patterns), nil
}

func TestUpdatePattern_FirstSight(t *testing.T) {
	store := newFakePatternStore()
	l := New(store)

	err := l.UpdatePattern(context.Background(), "biz-1", "Transfer to Chidi ₦15,000", model.ClassPersonal, "personal_transfer", 15000, true)
	require.NoError(t, err)

	p, err := store.FindExactPattern(context.Background(), "biz-1", "transfer to chidi")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 1, p.Occurrences)
	assert.Equal(t, 0, p.CorrectPredictions)
	assert.InDelta(t, model.PatternInitialConfidence, p.Confidence, 0.001)
}

func TestUpdatePattern_ConvergesUpward(t *testing.T) {
	store := newFakePatternStore()
	l := New(store)
	ctx := context.Background()

	var last float64
	for i := 0; i < 12; i++ {
		err := l.UpdatePattern(ctx, "biz-1", "transfer to chidi", model.ClassPersonal, "personal_transfer", 15000, false)
		require.NoError(t, err)

		p, err := store.FindExactPattern(ctx, "biz-1", "transfer to chidi")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.GreaterOrEqual(t, p.Confidence, last, "confidence must not decrease on confirmations")
		assert.LessOrEqual(t, p.Confidence, model.PatternConfidenceCeiling)
		last = p.Confidence
	}

	// Saturated volume with perfect accuracy lands on the ceiling.
	assert.InDelta(t, model.PatternConfidenceCeiling, last, 0.0001)
}

func TestUpdatePattern_EmptyPatternRejected(t *testing.T) {
	l := New(newFakePatternStore())

	err := l.UpdatePattern(context.Background(), "biz-1", "₦5,000 12/10/2025", model.ClassExpense, "misc", 5000, false)
	require.Error(t, err)
}

type fakeVerdictStore struct {
	reviewed map[string]model.ClassificationVerdict
	err      error
}

func (f *fakeVerdictStore) SaveVerdictRecord(_ context.Context, _ *model.VerdictRecord) error {
	return nil
}

func (f *fakeVerdictStore) GetVerdictRecord(_ context.Context, _ string) (*model.VerdictRecord, error) {
	return nil, nil
}

func (f *fakeVerdictStore) MarkUserReviewed(_ context.Context, id string, verdict model.ClassificationVerdict) error {
	if f.err != nil {
		return f.err
	}
	if f.reviewed == nil {
		f.reviewed = make(map[string]model.ClassificationVerdict)
	}
	f.reviewed[id] = verdict
	return nil
}

func (f *fakeVerdictStore) StatementClassCounts(_ context.Context, _ string) (map[model.Class]int, error) {
	return nil, nil
}

type fakeCorrectionStore struct {
	saved []model.Correction
}

func (f *fakeCorrectionStore) SaveCorrection(_ context.Context, c *model.Correction) error {
	f.saved = append(f.saved, *c)
	return nil
}

func (f *fakeCorrectionStore) AccuracyStats(_ context.Context, _ string) (*model.AccuracyStats, error) {
	return nil, nil
}

func TestApplyCorrection(t *testing.T) {
	store := newFakePatternStore()
	verdicts := &fakeVerdictStore{}
	corrections := &fakeCorrectionStore{}
	l := New(store)

	c := model.Correction{
		RecordID:    "rec-1",
		BusinessID:  "biz-1",
		Description: "Transfer to Chidi",
		Amount:      15000,
		Original: model.ClassificationVerdict{
			Class: model.ClassExpense, Category: "transfer_out", Source: model.SourceAI, Confidence: 0.5,
		},
		Corrected: model.ClassificationVerdict{
			Class: model.ClassPersonal, Category: "personal_transfer", Source: model.SourceUser, Confidence: 1.0,
		},
	}

	require.NoError(t, l.ApplyCorrection(context.Background(), verdicts, corrections, c))

	assert.Contains(t, verdicts.reviewed, "rec-1")
	require.Len(t, corrections.saved, 1)

	// Correcting an AI verdict is a confirmed observation for the pattern.
	p, err := store.FindExactPattern(context.Background(), "biz-1", "transfer to chidi")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 1, p.CorrectPredictions)
}

func TestApplyCorrection_LearningFailureIsNonFatal(t *testing.T) {
	store := newFakePatternStore()
	store.incErr = assert.AnError
	verdicts := &fakeVerdictStore{}
	corrections := &fakeCorrectionStore{}
	l := New(store)

	c := model.Correction{
		RecordID:    "rec-1",
		BusinessID:  "biz-1",
		Description: "Transfer to Chidi",
		Corrected: model.ClassificationVerdict{
			Class: model.ClassPersonal, Category: "personal_transfer", Source: model.SourceUser,
		},
		Original: model.ClassificationVerdict{
			Class: model.ClassExpense, Category: "transfer_out", Source: model.SourceAI,
		},
	}

	assert.NoError(t, l.ApplyCorrection(context.Background(), verdicts, corrections, c))
}
