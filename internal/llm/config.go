package llm

import (
	"context"
	"fmt"
	"strings"
)

// Config selects and configures the evaluation service provider.
type Config struct {
	// Provider is one of "openai", "anthropic", "gemini".
	Provider string
	BaseURL  string // OpenAI-compatible endpoint; empty means api.openai.com
	APIKey   string
	Model    string
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case "openai":
		if c.BaseURL == "" && c.APIKey == "" {
			return fmt.Errorf("an API key is required for api.openai.com: set --llm-key or QUIZZER_LLM_KEY")
		}
	case "anthropic", "gemini":
		if c.APIKey == "" {
			return fmt.Errorf("an API key is required for the %s provider: set --llm-key or QUIZZER_LLM_KEY", c.Provider)
		}
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("LLM model is required")
	}
	return nil
}

// NewProvider creates a Provider from configuration, wrapped with request logging.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		base = NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.APIKey, cfg.Model)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return WithLogging(base, nil), nil
}

