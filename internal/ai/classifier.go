package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lekanlabs/taxmata/internal/common"
	"github.com/lekanlabs/taxmata/internal/model"
	"github.com/lekanlabs/taxmata/internal/service"
)

// Fallback verdict values used when the provider cannot produce a usable
// verdict. The adapter never surfaces an error to the caller.
const (
	fallbackConfidence = 0.50
	defaultCategory    = "unclassified"
)

// Config holds configuration for the AI classifier.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// Classifier wraps an AI provider as the final cascade stage.
type Classifier struct {
	client      Client
	cache       *verdictCache
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// NewClassifier creates an AI classifier for the configured provider.
func NewClassifier(cfg Config) (*Classifier, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	return NewClassifierWithClient(client, cfg), nil
}

// NewClassifierWithClient creates a classifier around an existing client.
func NewClassifierWithClient(client Client, cfg Config) *Classifier {
	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = 500 * time.Millisecond
	}

	return &Classifier{
		client:      client,
		cache:       newVerdictCache(cfg.CacheTTL),
		rateLimiter: newRateLimiter(cfg.RateLimit),
		retryOpts:   retryOpts,
	}
}

// Classify produces a verdict for the transaction. It always answers: any
// transport or parse failure becomes the conservative fallback verdict
// (expense, 0.50) with the failure explained in the reasoning.
func (c *Classifier) Classify(ctx context.Context, txn model.Transaction, flags model.NigerianSignalFlags, business *model.BusinessContext) model.ClassificationVerdict {
	key := txn.Hash
	if key == "" {
		key = txn.GenerateHash()
	}

	if verdict, found := c.cache.get(key); found {
		slog.Debug("ai verdict cache hit", "transaction_id", txn.ID)
		return verdict
	}

	if err := c.rateLimiter.wait(ctx); err != nil {
		return c.fallback(fmt.Sprintf("rate limiter interrupted: %v", err))
	}

	prompt := buildPrompt(txn, flags, business)

	var resp Response
	err := common.WithRetry(ctx, func() error {
		var classifyErr error
		resp, classifyErr = c.client.Classify(ctx, prompt)
		if classifyErr != nil {
			return &common.RetryableError{Err: classifyErr, Retryable: true}
		}
		return nil
	}, c.retryOpts)

	if err != nil {
		slog.Warn("ai classification failed, using fallback",
			"transaction_id", txn.ID,
			"error", err)
		return c.fallback(fmt.Sprintf("AI classification unavailable (%v); defaulted to expense for review", err))
	}

	verdict := c.toVerdict(resp)
	c.cache.set(key, verdict)

	slog.Debug("ai verdict",
		"transaction_id", txn.ID,
		"class", verdict.Class,
		"confidence", verdict.Confidence)

	return verdict
}

// toVerdict converts a provider response into a clamped verdict.
func (c *Classifier) toVerdict(resp Response) model.ClassificationVerdict {
	class := model.Class(strings.ToLower(strings.TrimSpace(resp.Classification)))
	if !class.Valid() || class == model.ClassUnknown {
		return c.fallback(fmt.Sprintf("AI returned unrecognized classification %q", resp.Classification))
	}

	category := strings.TrimSpace(resp.Category)
	if category == "" {
		category = defaultCategory
	}

	verdict := model.ClassificationVerdict{
		Class:      class,
		Category:   category,
		Source:     model.SourceAI,
		Confidence: resp.Confidence,
		Reasoning:  resp.Reasoning,
	}
	verdict.Clamp()
	return verdict
}

// fallback is the conservative default verdict.
func (c *Classifier) fallback(reasoning string) model.ClassificationVerdict {
	return model.ClassificationVerdict{
		Class:      model.ClassExpense,
		Category:   defaultCategory,
		Source:     model.SourceAI,
		Confidence: fallbackConfidence,
		Reasoning:  reasoning,
	}
}

// Close stops background goroutines and cleans up resources.
func (c *Classifier) Close() error {
	if c.cache != nil {
		c.cache.Close()
	}
	if c.rateLimiter != nil {
		c.rateLimiter.Close()
	}
	return nil
}

// buildPrompt creates the classification prompt, constrained to the six
// classification labels.
func buildPrompt(txn model.Transaction, flags model.NigerianSignalFlags, business *model.BusinessContext) string {
	var details strings.Builder

	fmt.Fprintf(&details, "Description: %s\nDate: %s\n", txn.Description, txn.Date.Format("2006-01-02"))
	if txn.Debit != nil {
		fmt.Fprintf(&details, "Debit: ₦%.2f\n", *txn.Debit)
	}
	if txn.Credit != nil {
		fmt.Fprintf(&details, "Credit: ₦%.2f\n", *txn.Credit)
	}
	if txn.Reference != "" {
		fmt.Fprintf(&details, "Reference: %s\n", txn.Reference)
	}

	var hints []string
	if flags.IsUSSD {
		hints = append(hints, "USSD transfer")
	}
	if flags.MobileMoneyProvider != "" {
		hints = append(hints, "mobile money via "+flags.MobileMoneyProvider)
	}
	if flags.IsPOS {
		hints = append(hints, "POS terminal activity")
	}
	if flags.IsForeignCurrency {
		hints = append(hints, "foreign currency involved")
	}
	if flags.IsCapitalInjection {
		hints = append(hints, fmt.Sprintf("possible capital injection (%s)", flags.CapitalType))
	}
	if len(hints) > 0 {
		fmt.Fprintf(&details, "Detected signals: %s\n", strings.Join(hints, ", "))
	}

	if business != nil {
		fmt.Fprintf(&details, "Business: %s (%s, %s)\n", business.Name, business.Type, business.Industry)
	}

	return fmt.Sprintf(`Classify this Nigerian SME bank statement transaction for tax purposes.

Transaction:
%s
Allowed classifications (use exactly one): sale, expense, capital, loan, personal, salary

Respond with ONLY this JSON object:
{"classification": "<one of the allowed values>", "category": "<short_snake_case_sub_label>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}`,
		details.String())
}
