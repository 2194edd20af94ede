package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List learned classification patterns for a business",
		RunE:  runPatterns,
	}

	cmd.Flags().String("business", "", "business ID (required)")
	cmd.Flags().Int("limit", 20, "maximum number of patterns to show")
	_ = cmd.MarkFlagRequired("business")

	return cmd
}

func runPatterns(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	businessID, _ := cmd.Flags().GetString("business")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	patterns, err := store.TopPatterns(ctx, businessID, limit)
	if err != nil {
		return err
	}
	if len(patterns) == 0 {
		fmt.Printf("No learned patterns for business %s yet\n", businessID)
		return nil
	}

	fmt.Printf("%-40s %-10s %-24s %5s %5s %6s %12s\n",
		"PATTERN", "CLASS", "CATEGORY", "SEEN", "OK", "CONF", "AVG AMOUNT")
	for _, p := range patterns {
		fmt.Printf("%-40.40s %-10s %-24.24s %5d %5d %6.2f ₦%11.2f\n",
			p.Pattern, p.Class, p.Category,
			p.Occurrences, p.CorrectPredictions,
			p.Confidence, p.AverageAmount())
	}

	return nil
}
