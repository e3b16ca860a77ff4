package generator

import (
	"context"
	"errors"
	"testing"
)

type fakeLimiter struct {
	acquired int
	err      error
}

func (f *fakeLimiter) Acquire(_ context.Context) error {
	f.acquired++

	return f.err
}

type fakeGenerator struct {
	calls  int
	result string
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	f.calls++

	return f.result, f.err
}

func TestThrottledAcquiresBeforeGenerating(t *testing.T) {
	limiter := &fakeLimiter{}
	inner := &fakeGenerator{result: "generated text"}

	throttled := NewThrottled(inner, limiter)

	text, err := throttled.Generate(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if text != "generated text" {
		t.Errorf("unexpected text: %q", text)
	}
	if limiter.acquired != 1 {
		t.Errorf("expected 1 token acquisition, got %d", limiter.acquired)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
}

func TestThrottledSkipsGenerationWhenAcquireFails(t *testing.T) {
	limiter := &fakeLimiter{err: context.Canceled}
	inner := &fakeGenerator{result: "generated text"}

	throttled := NewThrottled(inner, limiter)

	if _, err := throttled.Generate(context.Background(), "system", "user"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}

	if inner.calls != 0 {
		t.Errorf("expected no inner calls after acquire failure, got %d", inner.calls)
	}
}

func TestThrottledPropagatesGenerationError(t *testing.T) {
	genErr := &GenerationError{Provider: "openai", Err: errors.New("boom")}
	throttled := NewThrottled(&fakeGenerator{err: genErr}, &fakeLimiter{})

	_, err := throttled.Generate(context.Background(), "system", "user")

	var got *GenerationError
	if !errors.As(err, &got) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if got.Provider != "openai" {
		t.Errorf("unexpected provider: %q", got.Provider)
	}
}
