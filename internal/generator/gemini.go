package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiGenerator calls the Gemini API through the google.golang.org/genai
// client.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func NewGeminiGenerator(
	ctx context.Context,
	apiKey string,
	model string,
	temperature float64,
	maxTokens int64,
) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:      client,
		model:       model,
		temperature: float32(temperature),
		maxTokens:   int32(maxTokens),
	}, nil
}

func (g *GeminiGenerator) Generate(
	ctx context.Context,
	systemPrompt string,
	userPrompt string,
) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(userPrompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(g.temperature),
			MaxOutputTokens:   g.maxTokens,
		},
	)
	if err != nil {
		return "", &GenerationError{
			Provider: "gemini",
			Err:      fmt.Errorf("generate content: %w", err),
		}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &GenerationError{
			Provider: "gemini",
			Err:      errors.New("response text is missing"),
		}
	}

	return text, nil
}
