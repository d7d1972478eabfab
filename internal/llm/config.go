package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  ProviderConfig
	OpenAI     ProviderConfig
	Gemini     ProviderConfig
	OpenRouter ProviderConfig
	Retry      RetryConfig

	// Timeout bounds a single Draft call including retries.
	Timeout time.Duration
}

// ProviderConfig holds credentials and model selection for one provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string // OpenAI-compatible providers only
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  ProviderConfig{Model: "claude-haiku"},
		OpenAI:     ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:     ProviderConfig{Model: "gemini-flash"},
		OpenRouter: ProviderConfig{Model: "google/gemini-2.0-flash-001", BaseURL: defaultOpenRouterBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// envKeys lists the provider-specific variables, mathdrill-prefixed first,
// then the vendor's conventional name.
var envKeys = map[string][]string{
	"anthropic":  {"MATHDRILL_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
	"openai":     {"MATHDRILL_OPENAI_API_KEY", "OPENAI_API_KEY"},
	"gemini":     {"MATHDRILL_GEMINI_API_KEY", "GEMINI_API_KEY"},
	"openrouter": {"MATHDRILL_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"},
}

// discoveryOrder is the order providers are tried in when none is configured.
var discoveryOrder = []string{"anthropic", "openai", "gemini", "openrouter"}

// ConfigFromEnv builds a Config from environment variables. provider and
// model come from the application config and may be empty. With no provider
// named, the first provider whose API key is set is selected.
func ConfigFromEnv(provider, model string) Config {
	cfg := DefaultConfig()

	for _, name := range discoveryOrder {
		pc := cfg.provider(name)
		for _, key := range envKeys[name] {
			if v := os.Getenv(key); v != "" {
				pc.APIKey = v
				break
			}
		}
	}
	if u := os.Getenv("MATHDRILL_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	switch {
	case provider != "":
		cfg.Provider = provider
	default:
		for _, name := range discoveryOrder {
			if cfg.provider(name).APIKey != "" {
				cfg.Provider = name
				break
			}
		}
	}

	if model != "" {
		if pc := cfg.provider(cfg.Provider); pc != nil {
			pc.Model = model
		}
	}
	return cfg
}

// provider returns the settings block for name, or nil for mock and
// unknown providers.
func (c *Config) provider(name string) *ProviderConfig {
	switch name {
	case "anthropic":
		return &c.Anthropic
	case "openai":
		return &c.OpenAI
	case "gemini":
		return &c.Gemini
	case "openrouter":
		return &c.OpenRouter
	}
	return nil
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	keys, ok := envKeys[c.Provider]
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.provider(c.Provider).APIKey == "" {
		return fmt.Errorf("%s is required for the %s provider", keys[0], c.Provider)
	}
	return nil
}
