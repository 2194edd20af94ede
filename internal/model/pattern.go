package model

import (
	"fmt"
	"time"
)

// LearnedPattern confidence bounds. The upper bound is below 1.0 so a
// learned pattern can never become unoverridable.
const (
	PatternConfidenceFloor   = 0.50
	PatternConfidenceCeiling = 0.99
	PatternInitialConfidence = 0.70
)

// LearnedPattern is a per-business (normalized description → category)
// association accumulated from user corrections. Created on the first
// correction for a never-seen pair, mutated on every subsequent match,
// never deleted by the engine.
type LearnedPattern struct {
	LastSeen           time.Time
	BusinessID         string
	Pattern            string // Normalized description text
	Category           string
	Class              Class
	ID                 int64
	Occurrences        int
	CorrectPredictions int
	TotalAmount        float64 // Running total for average-amount reporting
	Confidence         float64
}

// AverageAmount returns the mean absolute amount seen for this pattern.
func (p *LearnedPattern) AverageAmount() float64 {
	if p.Occurrences == 0 {
		return 0
	}
	return p.TotalAmount / float64(p.Occurrences)
}

// ClampConfidence bounds confidence into [floor, ceiling].
func (p *LearnedPattern) ClampConfidence() {
	if p.Confidence < PatternConfidenceFloor {
		p.Confidence = PatternConfidenceFloor
	}
	if p.Confidence > PatternConfidenceCeiling {
		p.Confidence = PatternConfidenceCeiling
	}
}

// Validate ensures the pattern has valid data before storage.
func (p *LearnedPattern) Validate() error {
	if p.BusinessID == "" {
		return fmt.Errorf("business id is required")
	}
	if p.Pattern == "" {
		return fmt.Errorf("pattern text is required")
	}
	if p.Category == "" {
		return fmt.Errorf("category is required")
	}
	if !p.Class.Valid() {
		return fmt.Errorf("invalid class %q", p.Class)
	}
	return nil
}
