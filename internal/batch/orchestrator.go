// Package batch coordinates multi-statement processing runs.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lekanlabs/taxmata/internal/common"
	"github.com/lekanlabs/taxmata/internal/engine"
	"github.com/lekanlabs/taxmata/internal/model"
	"github.com/lekanlabs/taxmata/internal/service"
)

// Defaults for chunked processing.
const (
	DefaultChunkSize  = 3
	DefaultChunkDelay = time.Second
)

// Loader fetches the transactions behind a job's document reference.
type Loader interface {
	Load(ctx context.Context, businessID, documentRef string) ([]model.Transaction, error)
}

// StatementProcessor runs one statement through the classification
// pipeline.
type StatementProcessor interface {
	ProcessStatement(ctx context.Context, businessID, statementID string, txns []model.Transaction) (*engine.StatementResult, error)
}

// Config tunes the orchestrator. Zero values fall back to the defaults.
type Config struct {
	ChunkSize  int
	ChunkDelay time.Duration
}

// Orchestrator creates batches and drives their jobs in chunks, isolating
// each job's failure from its siblings. Failed jobs stay failed; there is
// no automatic retry.
type Orchestrator struct {
	store     service.BatchStore
	patterns  service.PatternStore
	loader    Loader
	processor StatementProcessor
	config    Config
}

// NewOrchestrator wires the batch pipeline.
func NewOrchestrator(store service.BatchStore, patterns service.PatternStore, loader Loader, processor StatementProcessor, config Config) *Orchestrator {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.ChunkDelay <= 0 {
		config.ChunkDelay = DefaultChunkDelay
	}
	return &Orchestrator{
		store:     store,
		patterns:  patterns,
		loader:    loader,
		processor: processor,
		config:    config,
	}
}

// JobSpec describes one statement to enqueue.
type JobSpec struct {
	BusinessID  string
	DocumentRef string
	Priority    int
}

// CreateBatch persists a new batch with one queued job per spec and
// returns the batch ID.
func (o *Orchestrator) CreateBatch(ctx context.Context, specs []JobSpec) (string, error) {
	if len(specs) == 0 {
		return "", fmt.Errorf("%w: batch needs at least one job", common.ErrNoTransactions)
	}

	now := time.Now()
	batch := model.Batch{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}

	jobs := make([]model.BatchJob, 0, len(specs))
	for _, spec := range specs {
		if spec.BusinessID == "" || spec.DocumentRef == "" {
			return "", fmt.Errorf("%w: job needs business_id and document_ref", common.ErrInvalidConfig)
		}
		jobs = append(jobs, model.BatchJob{
			ID:          uuid.NewString(),
			BatchID:     batch.ID,
			BusinessID:  spec.BusinessID,
			DocumentRef: spec.DocumentRef,
			Status:      model.JobQueued,
			Priority:    spec.Priority,
			CreatedAt:   now,
		})
	}

	if err := o.store.CreateBatch(ctx, &batch, jobs); err != nil {
		return "", fmt.Errorf("failed to create batch: %w", err)
	}

	slog.Info("batch created", "batch_id", batch.ID, "jobs", len(jobs))
	return batch.ID, nil
}

// Process runs every queued job of the batch to a terminal state. Jobs are
// taken highest priority first, in chunks, with a pause between chunks so
// a large batch does not monopolize the AI provider. A cancelled context
// stops before the next chunk; in-flight jobs run to completion.
func (o *Orchestrator) Process(ctx context.Context, batchID string) error {
	_, jobs, err := o.store.GetBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to load batch %s: %w", batchID, err)
	}

	queued := make([]model.BatchJob, 0, len(jobs))
	for _, job := range jobs {
		if job.Status == model.JobQueued {
			queued = append(queued, job)
		}
	}
	sort.SliceStable(queued, func(i, j int) bool {
		return queued[i].Priority > queued[j].Priority
	})

	for start := 0; start < len(queued); start += o.config.ChunkSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.config.ChunkDelay):
			}
		}

		end := start + o.config.ChunkSize
		if end > len(queued) {
			end = len(queued)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(job model.BatchJob) {
				defer wg.Done()
				o.runJob(ctx, job)
			}(queued[i])
		}
		wg.Wait()
	}

	return nil
}

// runJob drives one job through processing. Panics and errors become a
// failed terminal state with the message recorded on the job.
func (o *Orchestrator) runJob(ctx context.Context, job model.BatchJob) {
	job.Status = model.JobProcessing
	if err := o.store.UpdateJob(ctx, &job); err != nil {
		slog.Warn("failed to mark job processing", "job_id", job.ID, "error", err)
	}

	defer func() {
		if r := recover(); r != nil {
			o.failJob(ctx, job, fmt.Sprintf("panic: %v", r))
		}
	}()

	txns, err := o.loader.Load(ctx, job.BusinessID, job.DocumentRef)
	if err != nil {
		o.failJob(ctx, job, fmt.Sprintf("failed to load statement: %v", err))
		return
	}

	result, err := o.processor.ProcessStatement(ctx, job.BusinessID, job.DocumentRef, txns)
	if err != nil {
		o.failJob(ctx, job, fmt.Sprintf("failed to process statement: %v", err))
		return
	}

	job.Status = model.JobCompleted
	job.Transactions = len(result.Records)
	job.AvgConfidence = result.AvgConfidence
	if err := o.store.UpdateJob(ctx, &job); err != nil {
		slog.Error("failed to record job completion", "job_id", job.ID, "error", err)
	}

	slog.Info("batch job completed",
		"job_id", job.ID,
		"transactions", job.Transactions,
		"avg_confidence", job.AvgConfidence)
}

func (o *Orchestrator) failJob(ctx context.Context, job model.BatchJob, message string) {
	job.Status = model.JobFailed
	job.Error = message
	if err := o.store.UpdateJob(ctx, &job); err != nil {
		slog.Error("failed to record job failure", "job_id", job.ID, "error", err)
	}
	slog.Warn("batch job failed", "job_id", job.ID, "reason", message)
}

// GetStatus aggregates the batch's job states, the mean confidence across
// completed jobs and the number of patterns learned since the batch was
// created.
func (o *Orchestrator) GetStatus(ctx context.Context, batchID string) (*model.BatchStatus, error) {
	batch, jobs, err := o.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch %s: %w", batchID, err)
	}

	status := &model.BatchStatus{BatchID: batchID}
	confidenceSum := 0.0
	for _, job := range jobs {
		switch job.Status {
		case model.JobQueued:
			status.Queued++
		case model.JobProcessing:
			status.Processing++
		case model.JobCompleted:
			status.Completed++
			confidenceSum += job.AvgConfidence
		case model.JobFailed:
			status.Failed++
		}
	}
	if status.Completed > 0 {
		status.AvgConfidence = confidenceSum / float64(status.Completed)
	}

	learned, err := o.patterns.CountPatternsSince(ctx, batch.CreatedAt)
	if err != nil {
		slog.Warn("failed to count learned patterns", "batch_id", batchID, "error", err)
	} else {
		status.PatternsLearned = learned
	}

	return status, nil
}
