package providers

import (
	"fmt"
	"log/slog"
	"os"
)

// =============================================================================
// Provider Configuration
// =============================================================================

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	BaseURL     string  `yaml:"base_url"`
}

// DefaultAnthropicConfig returns sensible defaults, reading the API key from
// the conventional environment variable.
func DefaultAnthropicConfig() AnthropicConfig {
	return AnthropicConfig{
		APIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 1024,
	}
}

// Validate checks the config is usable.
func (c AnthropicConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("anthropic: %w", ErrMissingAPIKey)
	}
	return nil
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	BaseURL     string  `yaml:"base_url"`
}

// DefaultOpenAIConfig returns sensible defaults.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		APIKey:    os.Getenv("OPENAI_API_KEY"),
		Model:     "gpt-4o-mini",
		MaxTokens: 1024,
	}
}

// Validate checks the config is usable.
func (c OpenAIConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	return nil
}

// =============================================================================
// Provider Selection
// =============================================================================

// ForType constructs the provider for a type, falling back to the local
// deterministic provider when credentials are missing.
func ForType(providerType ProviderType, log *slog.Logger) (Provider, error) {
	if log == nil {
		log = slog.Default()
	}

	switch providerType {
	case ProviderTypeAnthropic:
		cfg := DefaultAnthropicConfig()
		if err := cfg.Validate(); err != nil {
			log.Warn("anthropic credentials missing, using local provider", "error", err)
			return NewLocalProvider(), nil
		}
		return NewAnthropicProvider(cfg)

	case ProviderTypeOpenAI:
		cfg := DefaultOpenAIConfig()
		if err := cfg.Validate(); err != nil {
			log.Warn("openai credentials missing, using local provider", "error", err)
			return NewLocalProvider(), nil
		}
		return NewOpenAIProvider(cfg)

	case ProviderTypeLocal, "":
		return NewLocalProvider(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, providerType)
	}
}
