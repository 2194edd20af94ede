package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lekanlabs/taxmata/internal/common"
	"github.com/lekanlabs/taxmata/internal/model"
)

func floatPtr(f float64) *float64 { return &f }

func validTxn() model.Transaction {
	return model.Transaction{
		Date:        time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC),
		Description: "POS purchase",
		Debit:       floatPtr(5_000),
	}
}

func TestValidateTransactions(t *testing.T) {
	t.Run("accepts valid rows", func(t *testing.T) {
		require.NoError(t, ValidateTransactions([]model.Transaction{validTxn()}))
	})

	t.Run("accepts a row with both debit and credit", func(t *testing.T) {
		txn := validTxn()
		txn.Credit = floatPtr(150_000)
		require.NoError(t, ValidateTransactions([]model.Transaction{txn}))
	})

	t.Run("rejects empty input", func(t *testing.T) {
		assert.ErrorIs(t, ValidateTransactions(nil), common.ErrNoTransactions)
	})

	t.Run("rejects empty description", func(t *testing.T) {
		txn := validTxn()
		txn.Description = ""
		err := ValidateTransactions([]model.Transaction{txn})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty description")
	})

	t.Run("rejects missing amounts", func(t *testing.T) {
		txn := validTxn()
		txn.Debit = nil
		err := ValidateTransactions([]model.Transaction{txn})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no debit or credit")
	})

	t.Run("rejects zero date", func(t *testing.T) {
		txn := validTxn()
		txn.Date = time.Time{}
		err := ValidateTransactions([]model.Transaction{txn})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing date")
	})

	t.Run("names the offending row", func(t *testing.T) {
		bad := validTxn()
		bad.Debit = nil
		err := ValidateTransactions([]model.Transaction{validTxn(), bad})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "transaction 1")
	})
}
