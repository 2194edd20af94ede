// Package engine implements the tiered classification cascade for
// statement transactions.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/lekanlabs/taxmata/internal/common"
	"github.com/lekanlabs/taxmata/internal/learner"
	"github.com/lekanlabs/taxmata/internal/model"
	"github.com/lekanlabs/taxmata/internal/service"
)

// Escalation thresholds.
const (
	patternAcceptThreshold = 0.85
	aiEscalationThreshold  = 0.75
	reviewThreshold        = 0.75

	containmentSimilarity = 0.9
	fuzzyCandidateLimit   = 20
)

// Cascade escalates a transaction through pattern store, rule engine and
// AI adapter, consulting each stage only while confidence is insufficient.
type Cascade struct {
	patterns service.PatternStore
	rules    RuleClassifier
	ai       AIClassifier
	lookup   service.BusinessLookup // may be nil
}

// NewCascade wires the three stages. lookup may be nil; the AI stage then
// classifies without business context.
func NewCascade(patterns service.PatternStore, rules RuleClassifier, ai AIClassifier, lookup service.BusinessLookup) *Cascade {
	return &Cascade{
		patterns: patterns,
		rules:    rules,
		ai:       ai,
		lookup:   lookup,
	}
}

// stage is one escalation tier: run produces a candidate verdict (or
// nothing), stop reports whether the cascade may halt with the current
// best verdict.
type stage struct {
	name string
	run  func(ctx context.Context, txn model.Transaction, businessID string, flags model.NigerianSignalFlags) (model.ClassificationVerdict, bool)
	stop func(best model.ClassificationVerdict) bool
}

// Classify runs the escalation over the ordered stage list. A later stage
// candidate replaces the best verdict only when it is strictly more
// confident.
func (c *Cascade) Classify(ctx context.Context, txn model.Transaction, businessID string, flags model.NigerianSignalFlags) model.ClassificationVerdict {
	stages := []stage{
		{
			name: "pattern",
			run:  c.patternStage,
			stop: func(best model.ClassificationVerdict) bool {
				return best.Source == model.SourcePattern && best.Confidence >= patternAcceptThreshold
			},
		},
		{
			name: "rule",
			run: func(_ context.Context, txn model.Transaction, _ string, _ model.NigerianSignalFlags) (model.ClassificationVerdict, bool) {
				return c.rules.Classify(txn)
			},
			stop: func(best model.ClassificationVerdict) bool {
				return best.Confidence >= aiEscalationThreshold
			},
		},
		{
			name: "ai",
			run:  c.aiStage,
			stop: func(model.ClassificationVerdict) bool { return true },
		},
	}

	var best model.ClassificationVerdict
	bestSet := false

	for _, st := range stages {
		candidate, produced := st.run(ctx, txn, businessID, flags)
		if produced {
			candidate.Clamp()
			if !bestSet || candidate.Confidence > best.Confidence {
				best = candidate
				bestSet = true
			}
		}

		if bestSet && st.stop(best) {
			slog.Debug("cascade settled",
				"transaction_id", txn.ID,
				"stage", st.name,
				"source", best.Source,
				"confidence", best.Confidence)
			return best
		}
	}

	if !bestSet {
		// The AI stage always answers, so this is a safety net only.
		return model.ClassificationVerdict{
			Class:      model.ClassUnknown,
			Category:   "unclassified",
			Source:     model.SourceHybrid,
			Confidence: 0,
			Reasoning:  "no cascade stage produced a verdict",
		}
	}

	return best
}

// patternStage looks for an exact learned-pattern match, then a fuzzy one
// over the business's top patterns. Store failures skip the stage rather
// than failing classification.
func (c *Cascade) patternStage(ctx context.Context, txn model.Transaction, businessID string, _ model.NigerianSignalFlags) (model.ClassificationVerdict, bool) {
	if businessID == "" {
		return model.ClassificationVerdict{}, false
	}

	normalized := learner.Normalize(txn.Description)
	if normalized == "" {
		return model.ClassificationVerdict{}, false
	}

	exact, err := c.patterns.FindExactPattern(ctx, businessID, normalized)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		slog.Warn("pattern lookup failed, skipping pattern stage",
			"business_id", businessID,
			"error", err)
		return model.ClassificationVerdict{}, false
	}
	if err == nil && exact != nil {
		return patternVerdict(exact, exact.Confidence, "matches a learned pattern"), true
	}

	candidates, err := c.patterns.TopPatterns(ctx, businessID, fuzzyCandidateLimit)
	if err != nil {
		slog.Warn("pattern candidates lookup failed, skipping fuzzy match",
			"business_id", businessID,
			"error", err)
		return model.ClassificationVerdict{}, false
	}

	var bestPattern *model.LearnedPattern
	bestConfidence := 0.0
	for i := range candidates {
		sim := similarity(normalized, candidates[i].Pattern)
		if sim == 0 {
			continue
		}
		confidence := candidates[i].Confidence * sim
		if confidence > bestConfidence {
			bestPattern = &candidates[i]
			bestConfidence = confidence
		}
	}

	if bestPattern == nil {
		return model.ClassificationVerdict{}, false
	}

	return patternVerdict(bestPattern, bestConfidence, "similar to a learned pattern"), true
}

// aiStage resolves optional business context and defers to the adapter.
func (c *Cascade) aiStage(ctx context.Context, txn model.Transaction, businessID string, flags model.NigerianSignalFlags) (model.ClassificationVerdict, bool) {
	var business *model.BusinessContext
	if c.lookup != nil && businessID != "" {
		b, err := c.lookup.GetBusiness(ctx, businessID)
		if err != nil {
			slog.Debug("business lookup failed for ai stage",
				"business_id", businessID,
				"error", err)
		} else {
			business = b
		}
	}

	return c.ai.Classify(ctx, txn, flags, business), true
}

func patternVerdict(p *model.LearnedPattern, confidence float64, reasoning string) model.ClassificationVerdict {
	return model.ClassificationVerdict{
		Class:      p.Class,
		Category:   p.Category,
		Source:     model.SourcePattern,
		Confidence: confidence,
		Reasoning:  reasoning,
	}
}

// similarity scores two normalized patterns: full-substring containment
// is worth 0.9, anything else the token-overlap ratio.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return containmentSimilarity
	}

	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(tokensA))
	for _, t := range tokensA {
		setA[t] = struct{}{}
	}
	overlap := 0
	for _, t := range tokensB {
		if _, ok := setA[t]; ok {
			overlap++
		}
	}

	longer := len(tokensA)
	if len(tokensB) > longer {
		longer = len(tokensB)
	}
	return float64(overlap) / float64(longer)
}
