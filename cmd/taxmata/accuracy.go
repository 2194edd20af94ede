package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lekanlabs/taxmata/internal/accuracy"
)

func accuracyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accuracy",
		Short: "Show classification accuracy for a business",
		RunE:  runAccuracy,
	}

	cmd.Flags().String("business", "", "business ID (required)")
	_ = cmd.MarkFlagRequired("business")

	return cmd
}

func runAccuracy(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	businessID, _ := cmd.Flags().GetString("business")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	tracker := accuracy.NewTracker(store)
	stats, err := tracker.Stats(ctx, businessID)
	if err != nil {
		return err
	}

	fmt.Printf("Business %s\n", businessID)
	fmt.Printf("  Verdicts:  %d\n", stats.TotalVerdicts)
	fmt.Printf("  Reviewed:  %d\n", stats.UserReviewed)
	fmt.Printf("  Corrected: %d\n", stats.Corrected)

	if len(stats.ByClass) > 0 {
		fmt.Println("  By class:")
		for class, count := range stats.ByClass {
			fmt.Printf("    %-10s %d\n", class, count)
		}
	}

	reports, err := tracker.SourceBreakdown(ctx, businessID)
	if err != nil {
		return err
	}
	if len(reports) > 0 {
		fmt.Println("  By source (worst first):")
		for _, report := range reports {
			fmt.Printf("    %-8s reviewed %3d  accuracy %.0f%%\n",
				report.Source, report.Reviewed, report.Accuracy*100)
		}
	}
	return nil
}
