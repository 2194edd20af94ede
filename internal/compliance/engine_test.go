package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lekanlabs/taxmata/internal/model"
)

func floatPtr(f float64) *float64 { return &f }

func debitTxn(desc string, amount float64) model.Transaction {
	return model.Transaction{
		Date:        time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Debit:       floatPtr(amount),
	}
}

type stubVerdictStore struct {
	counts map[model.Class]int
	err    error
}

func (s *stubVerdictStore) SaveVerdictRecord(_ context.Context, _ *model.VerdictRecord) error {
	return nil
}

func (s *stubVerdictStore) GetVerdictRecord(_ context.Context, _ string) (*model.VerdictRecord, error) {
	return nil, nil
}

func (s *stubVerdictStore) MarkUserReviewed(_ context.Context, _ string, _ model.ClassificationVerdict) error {
	return nil
}

func (s *stubVerdictStore) StatementClassCounts(_ context.Context, _ string) (map[model.Class]int, error) {
	return s.counts, s.err
}

type stubRevenueStore struct {
	revenue float64
	err     error
}

func (s *stubRevenueStore) TrailingRevenue(_ context.Context, _ string, _, _ time.Time) (float64, error) {
	return s.revenue, s.err
}

func findFlag(flags []model.ComplianceFlag, flagType string) *model.ComplianceFlag {
	for i := range flags {
		if flags[i].Type == flagType {
			return &flags[i]
		}
	}
	return nil
}

func TestCheckRelatedParty_BoundaryExact(t *testing.T) {
	e := NewEngine(nil, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		txn      model.Transaction
		wantFlag bool
	}{
		{
			name:     "exactly at threshold does not trigger",
			txn:      debitTxn("Transfer to director Adeola", 5_000_000),
			wantFlag: false,
		},
		{
			name:     "just above threshold triggers",
			txn:      debitTxn("Transfer to director Adeola", 5_000_001),
			wantFlag: true,
		},
		{
			name:     "large amount without related-party keywords does not trigger",
			txn:      debitTxn("Bulk supplier settlement", 8_000_000),
			wantFlag: false,
		},
		{
			name:     "keywords below threshold do not trigger",
			txn:      debitTxn("Transfer to director Adeola", 400_000),
			wantFlag: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := e.Check(ctx, tt.txn, Refs{})
			flag := findFlag(flags, model.FlagRelatedParty)
			if !tt.wantFlag {
				assert.Nil(t, flag)
				return
			}
			require.NotNil(t, flag)
			assert.Equal(t, model.SeverityHigh, flag.Severity)
		})
	}
}

func TestCheckForeignCurrency(t *testing.T) {
	e := NewEngine(nil, nil)
	ctx := context.Background()

	flags := e.Check(ctx, debitTxn("SWIFT USD supplier invoice", 2_000_000), Refs{})
	flag := findFlag(flags, model.FlagForeignCurrency)
	require.NotNil(t, flag)
	assert.Equal(t, model.SeverityMedium, flag.Severity)

	flags = e.Check(ctx, debitTxn("SWIFT USD supplier invoice", 12_000_000), Refs{})
	flag = findFlag(flags, model.FlagForeignCurrency)
	require.NotNil(t, flag)
	assert.Equal(t, model.SeverityHigh, flag.Severity)

	flags = e.Check(ctx, debitTxn("Local supplier invoice", 12_000_000), Refs{})
	assert.Nil(t, findFlag(flags, model.FlagForeignCurrency))
}

func TestCheckMixedAccount(t *testing.T) {
	ctx := context.Background()
	txn := debitTxn("Transfer", 5_000)

	tests := []struct {
		name     string
		counts   map[model.Class]int
		wantFlag bool
	}{
		{
			name: "six personal of twenty five fires",
			counts: map[model.Class]int{
				model.ClassPersonal: 6,
				model.ClassSale:     10,
				model.ClassExpense:  9,
			},
			wantFlag: true,
		},
		{
			name: "exactly twenty percent does not fire",
			counts: map[model.Class]int{
				model.ClassPersonal: 5,
				model.ClassSale:     10,
				model.ClassExpense:  10,
			},
			wantFlag: false,
		},
		{
			name:     "empty statement does not fire",
			counts:   map[model.Class]int{},
			wantFlag: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(&stubVerdictStore{counts: tt.counts}, nil)
			flags := e.Check(ctx, txn, Refs{StatementID: "stmt-1"})
			flag := findFlag(flags, model.FlagMixedAccount)
			if !tt.wantFlag {
				assert.Nil(t, flag)
				return
			}
			require.NotNil(t, flag)
			assert.Equal(t, model.SeverityLow, flag.Severity)
		})
	}
}

func TestCheckVATProximity(t *testing.T) {
	ctx := context.Background()
	txn := debitTxn("POS settlement", 5_000)

	tests := []struct {
		name         string
		revenue      float64
		wantFlag     bool
		wantSeverity model.FlagSeverity
	}{
		{
			name:     "well below threshold",
			revenue:  10_000_000,
			wantFlag: false,
		},
		{
			name:     "exactly seventy percent does not fire",
			revenue:  17_500_000,
			wantFlag: false,
		},
		{
			name:         "above seventy percent warns",
			revenue:      18_000_000,
			wantFlag:     true,
			wantSeverity: model.SeverityMedium,
		},
		{
			name:         "above ninety percent is urgent",
			revenue:      23_000_000,
			wantFlag:     true,
			wantSeverity: model.SeverityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(nil, &stubRevenueStore{revenue: tt.revenue})
			flags := e.Check(ctx, txn, Refs{BusinessID: "biz-1"})
			flag := findFlag(flags, model.FlagVATThreshold)
			if !tt.wantFlag {
				assert.Nil(t, flag)
				return
			}
			require.NotNil(t, flag)
			assert.Equal(t, tt.wantSeverity, flag.Severity)
		})
	}
}

func TestCheck_LookupFailuresOmitFlags(t *testing.T) {
	e := NewEngine(
		&stubVerdictStore{err: errors.New("db offline")},
		&stubRevenueStore{err: errors.New("db offline")},
	)

	flags := e.Check(context.Background(), debitTxn("Transfer", 5_000), Refs{
		BusinessID:  "biz-1",
		StatementID: "stmt-1",
	})

	assert.Nil(t, findFlag(flags, model.FlagMixedAccount))
	assert.Nil(t, findFlag(flags, model.FlagVATThreshold))
}
