package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lekanlabs/taxmata/internal/learner"
	"github.com/lekanlabs/taxmata/internal/model"
)

func correctCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct <record-id>",
		Short: "Correct a classified transaction",
		Long: `Replace the stored verdict with your label. The record is marked
reviewed, the correction is logged for accuracy reporting and the
pattern store learns the new association.`,
		Args: cobra.ExactArgs(1),
		RunE: runCorrect,
	}

	cmd.Flags().String("class", "", "corrected class: sale, expense, capital, loan, personal or salary (required)")
	cmd.Flags().String("category", "", "corrected category, e.g. personal_transfer (required)")
	cmd.Flags().String("reasoning", "", "optional note explaining the correction")
	_ = cmd.MarkFlagRequired("class")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runCorrect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	class, _ := cmd.Flags().GetString("class")
	category, _ := cmd.Flags().GetString("category")
	reasoning, _ := cmd.Flags().GetString("reasoning")

	corrected := model.ClassificationVerdict{
		Class:      model.Class(class),
		Category:   category,
		Source:     model.SourceUser,
		Reasoning:  reasoning,
		Confidence: 1.0,
	}
	if !corrected.Class.Valid() || corrected.Class == model.ClassUnknown {
		return fmt.Errorf("invalid class %q", class)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	record, err := store.GetVerdictRecord(ctx, args[0])
	if err != nil {
		return err
	}

	correction := model.Correction{
		RecordID:    record.ID,
		BusinessID:  record.BusinessID,
		Description: record.Transaction.Description,
		Amount:      record.Transaction.AbsAmount(),
		Original:    record.Verdict,
		Corrected:   corrected,
	}

	if err := learner.New(store).ApplyCorrection(ctx, store, store, correction); err != nil {
		return fmt.Errorf("failed to apply correction: %w", err)
	}

	fmt.Printf("Corrected %q: %s/%s -> %s/%s\n",
		record.Transaction.Description,
		record.Verdict.Class, record.Verdict.Category,
		corrected.Class, corrected.Category)
	return nil
}
