// Package storage provides the SQLite persistence layer.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lekanlabs/taxmata/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidRecord  = errors.New("invalid verdict record")
	ErrInvalidPattern = errors.New("invalid learned pattern")
	ErrInvalidJob     = errors.New("invalid batch job")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateVerdictRecord validates a record before persistence.
func validateVerdictRecord(record *model.VerdictRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if record.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	if record.BusinessID == "" {
		return fmt.Errorf("%w: missing business ID", ErrInvalidRecord)
	}
	if record.Transaction.Description == "" {
		return fmt.Errorf("%w: missing transaction description", ErrInvalidRecord)
	}
	if !record.Verdict.Class.Valid() {
		return fmt.Errorf("%w: invalid class %q", ErrInvalidRecord, record.Verdict.Class)
	}
	if record.Verdict.Confidence < 0 || record.Verdict.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidRecord)
	}
	return nil
}

// validateBatchJob validates a job before persistence.
func validateBatchJob(job *model.BatchJob) error {
	if job == nil {
		return fmt.Errorf("%w: job", ErrNilParameter)
	}
	if job.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidJob)
	}
	if job.BatchID == "" {
		return fmt.Errorf("%w: missing batch ID", ErrInvalidJob)
	}
	switch job.Status {
	case model.JobQueued, model.JobProcessing, model.JobCompleted, model.JobFailed:
	default:
		return fmt.Errorf("%w: invalid status %q", ErrInvalidJob, job.Status)
	}
	return nil
}
