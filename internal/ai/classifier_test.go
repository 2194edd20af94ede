package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lekanlabs/taxmata/internal/model"
)

type stubClient struct {
	resp  Response
	err   error
	calls int
}

func (s *stubClient) Classify(_ context.Context, _ string) (Response, error) {
	s.calls++
	return s.resp, s.err
}

func floatPtr(f float64) *float64 { return &f }

func sampleTxn() model.Transaction {
	return model.Transaction{
		ID:          "txn-1",
		Date:        time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC),
		Description: "Transfer from Chinedu Ventures",
		Credit:      floatPtr(150_000),
	}
}

func newTestClassifier(client Client) *Classifier {
	return NewClassifierWithClient(client, Config{
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
		RateLimit:  10_000,
	})
}

func TestClassify_Success(t *testing.T) {
	client := &stubClient{resp: Response{
		Classification: "sale",
		Category:       "customer_payment",
		Confidence:     0.88,
		Reasoning:      "Inbound transfer from a business counterparty",
	}}
	c := newTestClassifier(client)
	defer func() { _ = c.Close() }()

	verdict := c.Classify(context.Background(), sampleTxn(), model.NigerianSignalFlags{}, nil)

	assert.Equal(t, model.ClassSale, verdict.Class)
	assert.Equal(t, "customer_payment", verdict.Category)
	assert.Equal(t, model.SourceAI, verdict.Source)
	assert.InDelta(t, 0.88, verdict.Confidence, 0.001)
}

func TestClassify_ConfidenceCappedAt95(t *testing.T) {
	client := &stubClient{resp: Response{
		Classification: "expense",
		Category:       "rent",
		Confidence:     1.0,
	}}
	c := newTestClassifier(client)
	defer func() { _ = c.Close() }()

	verdict := c.Classify(context.Background(), sampleTxn(), model.NigerianSignalFlags{}, nil)

	assert.InDelta(t, model.AIConfidenceCap, verdict.Confidence, 0.001)
}

func TestClassify_TransportFailureFallsBack(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}
	c := newTestClassifier(client)
	defer func() { _ = c.Close() }()

	verdict := c.Classify(context.Background(), sampleTxn(), model.NigerianSignalFlags{}, nil)

	assert.Equal(t, model.ClassExpense, verdict.Class)
	assert.Equal(t, defaultCategory, verdict.Category)
	assert.InDelta(t, fallbackConfidence, verdict.Confidence, 0.001)
	assert.Equal(t, model.SourceAI, verdict.Source)
	assert.Contains(t, verdict.Reasoning, "AI classification unavailable")
}

func TestClassify_UnknownClassificationFallsBack(t *testing.T) {
	client := &stubClient{resp: Response{
		Classification: "donation",
		Confidence:     0.9,
	}}
	c := newTestClassifier(client)
	defer func() { _ = c.Close() }()

	verdict := c.Classify(context.Background(), sampleTxn(), model.NigerianSignalFlags{}, nil)

	assert.Equal(t, model.ClassExpense, verdict.Class)
	assert.InDelta(t, fallbackConfidence, verdict.Confidence, 0.001)
}

func TestClassify_MissingCategoryDefaults(t *testing.T) {
	client := &stubClient{resp: Response{
		Classification: "personal",
		Confidence:     0.7,
	}}
	c := newTestClassifier(client)
	defer func() { _ = c.Close() }()

	verdict := c.Classify(context.Background(), sampleTxn(), model.NigerianSignalFlags{}, nil)

	assert.Equal(t, defaultCategory, verdict.Category)
}

func TestClassify_CachesByTransactionHash(t *testing.T) {
	client := &stubClient{resp: Response{
		Classification: "sale",
		Category:       "customer_payment",
		Confidence:     0.9,
	}}
	c := newTestClassifier(client)
	defer func() { _ = c.Close() }()

	txn := sampleTxn()
	_ = c.Classify(context.Background(), txn, model.NigerianSignalFlags{}, nil)
	_ = c.Classify(context.Background(), txn, model.NigerianSignalFlags{}, nil)

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 1, c.cache.size())
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Response
		wantErr bool
	}{
		{
			name:    "clean json",
			content: `{"classification": "sale", "category": "pos_sale", "confidence": 0.8, "reasoning": "r"}`,
			want:    Response{Classification: "sale", Category: "pos_sale", Confidence: 0.8, Reasoning: "r"},
		},
		{
			name:    "markdown fenced json",
			content: "```json\n{\"classification\": \"loan\", \"confidence\": 0.75}\n```",
			want:    Response{Classification: "loan", Confidence: 0.75},
		},
		{
			name:    "not json",
			content: "the transaction is probably a sale",
			wantErr: true,
		},
		{
			name:    "missing classification field",
			content: `{"category": "rent", "confidence": 0.9}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVerdict(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
