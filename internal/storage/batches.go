package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lekanlabs/taxmata/internal/common"
	"github.com/lekanlabs/taxmata/internal/model"
)

// CreateBatch persists the batch and its jobs in one transaction.
func (s *SQLiteStorage) CreateBatch(ctx context.Context, batch *model.Batch, jobs []model.BatchJob) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if batch == nil {
		return fmt.Errorf("%w: batch", ErrNilParameter)
	}
	if err := validateString(batch.ID, "batch.ID"); err != nil {
		return err
	}
	for i := range jobs {
		if err := validateBatchJob(&jobs[i]); err != nil {
			return fmt.Errorf("job %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, created_at) VALUES (?, ?)`,
		batch.ID, batch.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	for _, job := range jobs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO batch_jobs
				(id, batch_id, business_id, document_ref, status, error,
				 priority, transactions, avg_confidence, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			job.ID, job.BatchID, job.BusinessID, job.DocumentRef,
			string(job.Status), job.Error, job.Priority,
			job.Transactions, job.AvgConfidence, job.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert job %s: %w", job.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// GetBatch loads a batch and its jobs, or common.ErrBatchNotFound.
func (s *SQLiteStorage) GetBatch(ctx context.Context, batchID string) (*model.Batch, []model.BatchJob, error) {
	if err := validateContext(ctx); err != nil {
		return nil, nil, err
	}
	if err := validateString(batchID, "batchID"); err != nil {
		return nil, nil, err
	}

	var batch model.Batch
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM batches WHERE id = ?`, batchID).
		Scan(&batch.ID, &batch.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", common.ErrBatchNotFound, batchID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load batch: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, batch_id, business_id, document_ref, status, error,
			priority, transactions, avg_confidence, created_at
		FROM batch_jobs WHERE batch_id = ?
		ORDER BY priority DESC, created_at`, batchID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load batch jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []model.BatchJob
	for rows.Next() {
		var job model.BatchJob
		var status string
		var jobErr sql.NullString
		if err := rows.Scan(&job.ID, &job.BatchID, &job.BusinessID, &job.DocumentRef,
			&status, &jobErr, &job.Priority, &job.Transactions,
			&job.AvgConfidence, &job.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan job: %w", err)
		}
		job.Status = model.JobStatus(status)
		job.Error = jobErr.String
		jobs = append(jobs, job)
	}
	return &batch, jobs, rows.Err()
}

// UpdateJob stores a job's current state.
func (s *SQLiteStorage) UpdateJob(ctx context.Context, job *model.BatchJob) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBatchJob(job); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE batch_jobs
		SET status = ?, error = ?, transactions = ?, avg_confidence = ?
		WHERE id = ?`,
		string(job.Status), job.Error, job.Transactions, job.AvgConfidence, job.ID)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: job %s", common.ErrNotFound, job.ID)
	}
	return nil
}
