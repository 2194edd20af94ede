package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lekanlabs/taxmata/internal/dedupe"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <statement.ofx>",
		Short: "Parse and inspect a statement file without classifying it",
		Long: `Parse an OFX/QFX statement export, validate its rows and report what
classification would operate on: row count after deduplication, date
range and debit/credit totals. Nothing is persisted.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
}

func runImport(_ *cobra.Command, args []string) error {
	txns, err := loadStatementFile(args[0])
	if err != nil {
		return err
	}

	raw := len(txns)
	txns = dedupe.Transactions(txns)

	var earliest, latest time.Time
	var debits, credits float64
	for _, txn := range txns {
		if earliest.IsZero() || txn.Date.Before(earliest) {
			earliest = txn.Date
		}
		if txn.Date.After(latest) {
			latest = txn.Date
		}
		if txn.Debit != nil {
			debits += *txn.Debit
		}
		if txn.Credit != nil {
			credits += *txn.Credit
		}
	}

	fmt.Printf("File: %s\n", args[0])
	fmt.Printf("Transactions: %d (%d duplicate rows dropped)\n", len(txns), raw-len(txns))
	fmt.Printf("Date range: %s to %s\n", earliest.Format("2006-01-02"), latest.Format("2006-01-02"))
	fmt.Printf("Total debits: ₦%.2f\n", debits)
	fmt.Printf("Total credits: ₦%.2f\n", credits)

	return nil
}
