package model

import "time"

// Correction is a user's fix of a classified transaction. It feeds the
// pattern learner and marks the stored verdict record as reviewed.
type Correction struct {
	CreatedAt   time.Time
	RecordID    string
	BusinessID  string
	Description string
	Original    ClassificationVerdict
	Corrected   ClassificationVerdict
	Amount      float64
}

// AccuracyStats is a read-only aggregation over historical verdicts and
// corrections. Used for reporting, never for cascade decisions.
type AccuracyStats struct {
	BusinessID    string
	TotalVerdicts int
	UserReviewed  int
	Corrected     int
	BySource      map[VerdictSource]SourceAccuracy
	ByClass       map[Class]int
}

// SourceAccuracy breaks reviewed verdicts down for one cascade source.
type SourceAccuracy struct {
	Reviewed  int
	Corrected int
}

// Accuracy returns the fraction of reviewed verdicts the user left
// unchanged, or 0 when nothing has been reviewed.
func (a SourceAccuracy) Accuracy() float64 {
	if a.Reviewed == 0 {
		return 0
	}
	return float64(a.Reviewed-a.Corrected) / float64(a.Reviewed)
}
