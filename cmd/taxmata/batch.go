package main

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/lekanlabs/taxmata/internal/batch"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process multiple statements as a batch",
	}

	cmd.AddCommand(batchCreateCmd())
	cmd.AddCommand(batchRunCmd())
	cmd.AddCommand(batchStatusCmd())

	return cmd
}

func batchCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <statement.ofx>...",
		Short: "Create a batch of statement-processing jobs",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatchCreate,
	}

	cmd.Flags().String("business", "", "business ID the statements belong to (required)")
	cmd.Flags().Int("priority", 0, "job priority (higher runs first)")
	_ = cmd.MarkFlagRequired("business")

	return cmd
}

func runBatchCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	businessID, _ := cmd.Flags().GetString("business")
	priority, _ := cmd.Flags().GetInt("priority")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	specs := make([]batch.JobSpec, 0, len(args))
	for _, path := range args {
		specs = append(specs, batch.JobSpec{
			BusinessID:  businessID,
			DocumentRef: path,
			Priority:    priority,
		})
	}

	orchestrator := batch.NewOrchestrator(store, store, fileLoader{}, nil, batch.Config{})
	batchID, err := orchestrator.CreateBatch(ctx, specs)
	if err != nil {
		return err
	}

	fmt.Printf("Created batch %s with %d jobs\n", batchID, len(specs))
	fmt.Printf("Run it with: taxmata batch run %s\n", batchID)
	return nil
}

func batchRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <batch-id>",
		Short: "Process a batch, showing progress",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatchRun,
	}
}

func runBatchRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	batchID := args[0]

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

	orchestrator := batch.NewOrchestrator(store, store, fileLoader{}, processor, batch.Config{})

	status, err := orchestrator.GetStatus(ctx, batchID)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(status.Total(),
		progressbar.OptionSetDescription("processing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	_ = bar.Set(status.Completed + status.Failed)

	done := make(chan error, 1)
	go func() { done <- orchestrator.Process(ctx, batchID) }()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("batch processing failed: %w", err)
			}
			_ = bar.Finish()
			return printBatchStatus(ctx, orchestrator, batchID)
		case <-ticker.C:
			if status, statusErr := orchestrator.GetStatus(ctx, batchID); statusErr == nil {
				_ = bar.Set(status.Completed + status.Failed)
			}
		}
	}
}

func batchStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <batch-id>",
		Short: "Show the state of a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			orchestrator := batch.NewOrchestrator(store, store, fileLoader{}, nil, batch.Config{})
			return printBatchStatus(ctx, orchestrator, args[0])
		},
	}
}

func printBatchStatus(ctx context.Context, orchestrator *batch.Orchestrator, batchID string) error {
	status, err := orchestrator.GetStatus(ctx, batchID)
	if err != nil {
		return err
	}

	fmt.Printf("Batch %s\n", status.BatchID)
	fmt.Printf("  Queued:     %d\n", status.Queued)
	fmt.Printf("  Processing: %d\n", status.Processing)
	fmt.Printf("  Completed:  %d\n", status.Completed)
	fmt.Printf("  Failed:     %d\n", status.Failed)
	if status.Completed > 0 {
		fmt.Printf("  Avg confidence: %.2f\n", status.AvgConfidence)
	}
	fmt.Printf("  Patterns learned since start: %d\n", status.PatternsLearned)
	return nil
}
