package generator

import (
	"context"
	"fmt"
)

// RateLimiter grants permission to issue one outbound generation request.
type RateLimiter interface {
	Acquire(ctx context.Context) error
}

// Throttled routes every Generate call through a shared rate limiter
// before delegating to the wrapped generator, so all callers in the
// process draw from the same request budget.
type Throttled struct {
	inner   Generator
	limiter RateLimiter
}

func NewThrottled(inner Generator, limiter RateLimiter) *Throttled {
	return &Throttled{
		inner:   inner,
		limiter: limiter,
	}
}

func (t *Throttled) Generate(
	ctx context.Context,
	systemPrompt string,
	userPrompt string,
) (string, error) {
	if err := t.limiter.Acquire(ctx); err != nil {
		return "", fmt.Errorf("acquire rate limit token: %w", err)
	}

	return t.inner.Generate(ctx, systemPrompt, userPrompt)
}
