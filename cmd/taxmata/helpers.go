package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/lekanlabs/taxmata/internal/ai"
	"github.com/lekanlabs/taxmata/internal/batch"
	"github.com/lekanlabs/taxmata/internal/compliance"
	"github.com/lekanlabs/taxmata/internal/config"
	"github.com/lekanlabs/taxmata/internal/engine"
	"github.com/lekanlabs/taxmata/internal/ingest"
	"github.com/lekanlabs/taxmata/internal/model"
	"github.com/lekanlabs/taxmata/internal/rules"
	"github.com/lekanlabs/taxmata/internal/signals"
	"github.com/lekanlabs/taxmata/internal/storage"
)

// initStorage opens the configured database and applies migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// buildProcessor assembles the full classification pipeline. The returned
// classifier must be closed when the command finishes.
func buildProcessor(store *storage.SQLiteStorage) (*engine.Processor, *ai.Classifier, error) {
	classifier, err := ai.NewClassifier(config.LoadAIConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build AI classifier: %w", err)
	}

	cascade := engine.NewCascade(store, rules.NewEngine(), classifier, store)
	detector := signals.NewDetector(store)
	checker := compliance.NewEngine(store, store)

	return engine.NewProcessor(detector, cascade, checker, store), classifier, nil
}

// loadStatementFile parses and validates one OFX statement file.
func loadStatementFile(path string) ([]model.Transaction, error) {
	f, err := os.Open(path) // #nosec G304 -- user-supplied statement path
	if err != nil {
		return nil, fmt.Errorf("failed to open statement file: %w", err)
	}
	defer func() { _ = f.Close() }()

	txns, err := ingest.ParseOFX(f)
	if err != nil {
		return nil, err
	}
	if err := ingest.ValidateTransactions(txns); err != nil {
		return nil, fmt.Errorf("statement failed validation: %w", err)
	}
	return txns, nil
}

// fileLoader adapts statement files on disk to the batch loader contract.
type fileLoader struct{}

var _ batch.Loader = fileLoader{}

func (fileLoader) Load(_ context.Context, _ string, documentRef string) ([]model.Transaction, error) {
	return loadStatementFile(config.ExpandPath(documentRef))
}
