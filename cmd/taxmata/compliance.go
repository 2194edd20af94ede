package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lekanlabs/taxmata/internal/compliance"
)

func complianceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compliance <record-id>",
		Short: "Re-run compliance checks for a classified transaction",
		Long: `Load a stored verdict record and evaluate the compliance checks
against the current state of the database. Useful after corrections or
newly classified statements have changed the revenue picture.`,
		Args: cobra.ExactArgs(1),
		RunE: runCompliance,
	}
}

func runCompliance(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	record, err := store.GetVerdictRecord(ctx, args[0])
	if err != nil {
		return err
	}

	checker := compliance.NewEngine(store, store)
	flags := checker.Check(ctx, record.Transaction, compliance.Refs{
		BusinessID:  record.BusinessID,
		StatementID: record.StatementID,
	})

	fmt.Printf("Transaction: %s\n", record.Transaction.Description)
	fmt.Printf("Classified as: %s / %s (%.2f)\n",
		record.Verdict.Class, record.Verdict.Category, record.Verdict.Confidence)

	if len(flags) == 0 {
		fmt.Println("No compliance flags")
		return nil
	}

	for _, flag := range flags {
		fmt.Printf("[%s] %s: %s\n", flag.Severity, flag.Type, flag.Message)
		if flag.Action != "" {
			fmt.Printf("  Recommended: %s\n", flag.Action)
		}
	}
	return nil
}
