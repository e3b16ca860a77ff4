package generator

import (
	"context"
	"fmt"
)

// Generator produces text for a system/user prompt pair. Implementations
// wrap one concrete provider and are safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GenerationError reports a failed generation call: a network error, a
// provider-side rejection or a malformed response. It aborts the current
// summarization run only.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
