// Package ai wraps the external text-classification capability behind a
// conservative adapter: every failure mode collapses into a fallback
// verdict instead of an error.
package ai

import "context"

// Client defines the interface for AI providers.
type Client interface {
	Classify(ctx context.Context, prompt string) (Response, error)
}

// Response is the provider's structured verdict for one transaction.
type Response struct {
	Classification string  `json:"classification"`
	Category       string  `json:"category"`
	Reasoning      string  `json:"reasoning"`
	Confidence     float64 `json:"confidence"`
}
