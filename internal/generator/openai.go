package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIConfig configures a Chat Completions backed generator. BaseURL is
// optional and selects an OpenAI-compatible provider such as io.net.
type OpenAIConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
}

// OpenAIGenerator calls the Chat Completions API of OpenAI or any
// OpenAI-compatible provider.
type OpenAIGenerator struct {
	client      openai.Client
	provider    string
	model       string
	temperature float64
	maxTokens   int64
}

func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Provider)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIGenerator{
		client:      openai.NewClient(opts...),
		provider:    cfg.Provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (g *OpenAIGenerator) Generate(
	ctx context.Context,
	systemPrompt string,
	userPrompt string,
) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature:         openai.Float(g.temperature),
		MaxCompletionTokens: openai.Int(g.maxTokens),
	})
	if err != nil {
		return "", &GenerationError{
			Provider: g.provider,
			Err:      fmt.Errorf("do request: %w", err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{
			Provider: g.provider,
			Err:      errors.New("chat completion choices are missing"),
		}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &GenerationError{
			Provider: g.provider,
			Err:      errors.New("chat completion choice message content is missing"),
		}
	}

	return text, nil
}
