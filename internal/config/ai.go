package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/lekanlabs/taxmata/internal/ai"
)

// LoadAIConfig assembles the AI classifier configuration from viper.
// Environment variables override file values through the TAXMATA_ prefix
// bound in the root command.
func LoadAIConfig() ai.Config {
	cfg := ai.Config{
		Provider:    viper.GetString("ai.provider"),
		APIKey:      viper.GetString("ai.api_key"),
		Model:       viper.GetString("ai.model"),
		MaxRetries:  viper.GetInt("ai.max_retries"),
		RetryDelay:  viper.GetDuration("ai.retry_delay"),
		CacheTTL:    viper.GetDuration("ai.cache_ttl"),
		RateLimit:   viper.GetInt("ai.rate_limit"),
		Temperature: viper.GetFloat64("ai.temperature"),
		MaxTokens:   viper.GetInt("ai.max_tokens"),
	}

	if cfg.Provider == "" {
		cfg.Provider = "anthropic"
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}
	return cfg
}
