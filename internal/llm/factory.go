package llm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/store"
)

// NewProvider creates the configured Provider, wrapped as
// caller → retry → recorder → vendor so every attempt is recorded.
// repo and log may be nil.
func NewProvider(ctx context.Context, cfg Config, repo store.GenerationRepo, log logrus.FieldLogger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var vendor Provider
	var err error
	switch cfg.Provider {
	case "anthropic":
		vendor, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		vendor, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		vendor, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		vendor, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		vendor = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithRecorder(vendor, cfg.Provider, repo, log), cfg.Retry, cfg.Timeout, log), nil
}
