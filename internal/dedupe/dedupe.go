// Package dedupe collapses duplicate transactions produced when a
// multi-page document is processed in overlapping page batches.
package dedupe

import "github.com/lekanlabs/taxmata/internal/model"

// Transactions removes duplicates by composite key (date, description,
// debit, credit), keeping the first occurrence and preserving order.
// Idempotent: deduping an already-deduped list is a no-op.
func Transactions(txns []model.Transaction) []model.Transaction {
	seen := make(map[string]struct{}, len(txns))
	out := make([]model.Transaction, 0, len(txns))

	for _, txn := range txns {
		key := txn.Hash
		if key == "" {
			key = txn.GenerateHash()
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, txn)
	}

	return out
}
