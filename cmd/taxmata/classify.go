package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <statement.ofx>",
		Short: "Classify every transaction in a bank statement",
		Long: `Run one statement file through the full pipeline: deduplication,
Nigerian signal detection, the classification cascade and compliance
checks. Verdicts are persisted and a summary is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().String("business", "", "business ID the statement belongs to (required)")
	cmd.Flags().String("statement", "", "statement ID (default: statement file name)")
	_ = cmd.MarkFlagRequired("business")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	businessID, _ := cmd.Flags().GetString("business")
	statementID, _ := cmd.Flags().GetString("statement")
	if statementID == "" {
		statementID = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}

	txns, err := loadStatementFile(args[0])
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	processor, classifier, err := buildProcessor(store)
	if err != nil {
		return err
	}
	defer func() { _ = classifier.Close() }()

	result, err := processor.ProcessStatement(ctx, businessID, statementID, txns)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	fmt.Printf("Statement %s: %d transactions classified\n", statementID, len(result.Records))
	fmt.Printf("Average confidence: %.2f\n", result.AvgConfidence)
	fmt.Printf("Needs review: %d\n", result.NeedsReview)

	for _, record := range result.Records {
		marker := " "
		if record.NeedsReview {
			marker = "!"
		}
		fmt.Printf("%s %-10s %-24s %.2f  %s\n",
			marker,
			record.Verdict.Class,
			record.Verdict.Category,
			record.Verdict.Confidence,
			record.Transaction.Description)
	}

	return nil
}
