package model

import "time"

// JobStatus tracks a batch job through its lifecycle. Terminal states are
// final; failed jobs are not retried automatically.
type JobStatus string

// Job lifecycle states.
const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// BatchJob is one statement-processing unit of work inside a batch.
type BatchJob struct {
	CreatedAt     time.Time
	ID            string
	BatchID       string
	BusinessID    string
	DocumentRef   string
	Status        JobStatus
	Error         string // Captured failure message for failed jobs
	Priority      int
	Transactions  int     // Rows classified by a completed job
	AvgConfidence float64 // Mean verdict confidence for a completed job
}

// Batch groups jobs submitted together.
type Batch struct {
	CreatedAt time.Time
	ID        string
}

// BatchStatus aggregates live counts and derived metrics for a batch.
type BatchStatus struct {
	BatchID         string
	Queued          int
	Processing      int
	Completed       int
	Failed          int
	AvgConfidence   float64 // Across completed jobs
	PatternsLearned int     // Patterns created since the batch started
}

// Total returns the number of jobs in the batch.
func (s *BatchStatus) Total() int {
	return s.Queued + s.Processing + s.Completed + s.Failed
}

// Done reports whether every job reached a terminal state.
func (s *BatchStatus) Done() bool {
	return s.Queued == 0 && s.Processing == 0
}
