package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lekanlabs/taxmata/internal/model"
)

func floatPtr(f float64) *float64 { return &f }

func txn(day int, desc string, debit, credit *float64) model.Transaction {
	return model.Transaction{
		Date:        time.Date(2025, 10, day, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Debit:       debit,
		Credit:      credit,
	}
}

func TestTransactions(t *testing.T) {
	a := txn(1, "POS settlement", nil, floatPtr(50_000))
	b := txn(1, "EMTL Charge", floatPtr(50), nil)
	c := txn(2, "POS settlement", nil, floatPtr(50_000)) // same desc, different date

	tests := []struct {
		name string
		in   []model.Transaction
		want []string
	}{
		{
			name: "removes overlap duplicates keeping first",
			in:   []model.Transaction{a, b, a, c},
			want: []string{"POS settlement", "EMTL Charge", "POS settlement"},
		},
		{
			name: "same description different date kept",
			in:   []model.Transaction{a, c},
			want: []string{"POS settlement", "POS settlement"},
		},
		{
			name: "same description different amount kept",
			in:   []model.Transaction{a, txn(1, "POS settlement", nil, floatPtr(60_000))},
			want: []string{"POS settlement", "POS settlement"},
		},
		{
			name: "empty input",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transactions(tt.in)
			descs := make([]string, 0, len(got))
			for _, g := range got {
				descs = append(descs, g.Description)
			}
			assert.Equal(t, tt.want, descs)
		})
	}
}

func TestTransactions_Idempotent(t *testing.T) {
	in := []model.Transaction{
		txn(1, "POS settlement", nil, floatPtr(50_000)),
		txn(1, "EMTL Charge", floatPtr(50), nil),
		txn(1, "POS settlement", nil, floatPtr(50_000)),
		txn(3, "Transfer to vendor", floatPtr(20_000), nil),
	}

	once := Transactions(in)
	twice := Transactions(once)

	assert.Equal(t, once, twice)
	assert.Len(t, once, 3)
}

func TestTransactions_OrderPreserved(t *testing.T) {
	in := []model.Transaction{
		txn(5, "e", floatPtr(1), nil),
		txn(4, "d", floatPtr(2), nil),
		txn(3, "c", floatPtr(3), nil),
		txn(4, "d", floatPtr(2), nil),
	}

	got := Transactions(in)
	assert.Equal(t, []string{"e", "d", "c"}, []string{got[0].Description, got[1].Description, got[2].Description})
}
