package generator

import (
	"context"
	"fmt"
	"strings"

	"docsummary/internal/config"
)

// New builds the configured provider and wraps it with the shared rate
// limiter. Missing credentials or an unknown provider name fail here, at
// startup, so a misconfigured process never accepts summarization work.
func New(
	ctx context.Context,
	cfg config.Config,
	limiter RateLimiter,
) (Generator, error) {
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return NewThrottled(provider, limiter), nil
}

func newProvider(ctx context.Context, cfg config.Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}

		return NewOpenAIGenerator(OpenAIConfig{
			Provider:    "openai",
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	case "gemini":
		if strings.TrimSpace(cfg.GoogleAPIKey) == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is required when LLM_PROVIDER=gemini")
		}

		return NewGeminiGenerator(
			ctx,
			cfg.GoogleAPIKey,
			cfg.GeminiModel,
			cfg.Temperature,
			cfg.MaxTokens,
		)
	case "ionet":
		if strings.TrimSpace(cfg.IONetAPIKey) == "" {
			return nil, fmt.Errorf("IONET_API_KEY is required when LLM_PROVIDER=ionet")
		}

		return NewOpenAIGenerator(OpenAIConfig{
			Provider:    "ionet",
			APIKey:      cfg.IONetAPIKey,
			BaseURL:     cfg.IONetBaseURL,
			Model:       cfg.IONetModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	default:
		return nil, fmt.Errorf(
			"unknown LLM provider %q (use openai, gemini or ionet)",
			cfg.Provider,
		)
	}
}
