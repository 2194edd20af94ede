package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version the application
// expects. Failing to reach it is fatal.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS businesses (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT,
					industry TEXT,
					stage TEXT NOT NULL DEFAULT 'early',
					has_prior_revenue INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS learned_patterns (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					business_id TEXT NOT NULL,
					pattern TEXT NOT NULL,
					category TEXT NOT NULL,
					class TEXT NOT NULL,
					occurrences INTEGER NOT NULL DEFAULT 0,
					correct_predictions INTEGER NOT NULL DEFAULT 0,
					total_amount REAL NOT NULL DEFAULT 0,
					confidence REAL NOT NULL DEFAULT 0.70,
					last_seen DATETIME NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(business_id, pattern, category)
				)`,
				`CREATE INDEX idx_patterns_business ON learned_patterns(business_id, confidence DESC)`,

				`CREATE TABLE IF NOT EXISTS verdict_records (
					id TEXT PRIMARY KEY,
					business_id TEXT NOT NULL,
					statement_id TEXT,
					txn_date DATETIME NOT NULL,
					txn_description TEXT NOT NULL,
					txn_reference TEXT,
					txn_hash TEXT NOT NULL,
					txn_debit REAL,
					txn_credit REAL,
					txn_balance REAL,
					class TEXT NOT NULL,
					category TEXT NOT NULL,
					source TEXT NOT NULL,
					reasoning TEXT,
					confidence REAL NOT NULL DEFAULT 0,
					signals TEXT,
					flags TEXT,
					needs_review INTEGER NOT NULL DEFAULT 0,
					user_reviewed INTEGER NOT NULL DEFAULT 0,
					classified_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_verdicts_business ON verdict_records(business_id, txn_date)`,
				`CREATE INDEX idx_verdicts_statement ON verdict_records(statement_id)`,

				`CREATE TABLE IF NOT EXISTS corrections (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					record_id TEXT NOT NULL,
					business_id TEXT NOT NULL,
					description TEXT NOT NULL,
					amount REAL NOT NULL DEFAULT 0,
					original_class TEXT NOT NULL,
					original_category TEXT NOT NULL,
					original_source TEXT NOT NULL,
					original_confidence REAL NOT NULL DEFAULT 0,
					corrected_class TEXT NOT NULL,
					corrected_category TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_corrections_business ON corrections(business_id)`,

				`CREATE TABLE IF NOT EXISTS batches (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS batch_jobs (
					id TEXT PRIMARY KEY,
					batch_id TEXT NOT NULL,
					business_id TEXT NOT NULL,
					document_ref TEXT NOT NULL,
					status TEXT NOT NULL,
					error TEXT,
					priority INTEGER NOT NULL DEFAULT 0,
					transactions INTEGER NOT NULL DEFAULT 0,
					avg_confidence REAL NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL,
					FOREIGN KEY (batch_id) REFERENCES batches(id)
				)`,
				`CREATE INDEX idx_batch_jobs_batch ON batch_jobs(batch_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Index verdicts for revenue window queries",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_verdicts_revenue
				ON verdict_records(business_id, class, txn_date)`)
			return err
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
