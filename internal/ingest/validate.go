// Package ingest is the extraction boundary: it validates and converts
// statement rows before they enter the classification pipeline.
package ingest

import (
	"fmt"

	"github.com/lekanlabs/taxmata/internal/common"
	"github.com/lekanlabs/taxmata/internal/model"
)

// ValidateTransactions checks extracted rows for structural problems
// before classification. A row may carry both a debit and a credit; some
// banks emit fee-inclusive settlement rows that legitimately have both.
func ValidateTransactions(txns []model.Transaction) error {
	if len(txns) == 0 {
		return common.ErrNoTransactions
	}

	for i, txn := range txns {
		if txn.Description == "" {
			return fmt.Errorf("transaction %d: empty description", i)
		}
		if txn.Debit == nil && txn.Credit == nil {
			return fmt.Errorf("transaction %d (%q): no debit or credit amount", i, txn.Description)
		}
		if txn.Date.IsZero() {
			return fmt.Errorf("transaction %d (%q): missing date", i, txn.Description)
		}
	}

	return nil
}
