package ratelimiter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRefill(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		tokens  float64
		rate    float64
		burst   float64
		elapsed time.Duration
		want    float64
	}{
		{"NoElapsedTime", 0.5, 1, 1, 0, 0.5},
		{"PartialRefill", 0, 1, 1, 500 * time.Millisecond, 0.5},
		{"FullRefill", 0, 1, 1, time.Second, 1},
		{"CappedAtBurst", 0.5, 1, 1, time.Hour, 1},
		{"LargerBurst", 0, 2, 5, time.Second, 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := refill(test.tokens, test.rate, test.burst, now, now.Add(test.elapsed))

			if diff := got - test.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected %v tokens, got %v", test.want, got)
			}
		})
	}
}

func TestDelayForToken(t *testing.T) {
	tests := []struct {
		name   string
		tokens float64
		rate   float64
		want   time.Duration
	}{
		{"EmptyBucket", 0, 1, time.Second},
		{"HalfToken", 0.5, 1, 500 * time.Millisecond},
		{"FullToken", 1, 1, 0},
		{"FastRate", 0, 10, 100 * time.Millisecond},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := delayForToken(test.tokens, test.rate); got != test.want {
				t.Errorf("expected delay %v, got %v", test.want, got)
			}
		})
	}
}

func TestAcquireSpacesOutGrants(t *testing.T) {
	// 3000 rpm = 50 tokens per second = one token every 20ms.
	rl := New(3000, 1, testLogger())
	defer rl.Stop()

	ctx := context.Background()
	start := time.Now()

	const acquisitions = 5
	for range acquisitions {
		if err := rl.Acquire(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	elapsed := time.Since(start)

	// The first grant uses the burst token; the remaining four must wait
	// roughly 20ms each. Keep a wide margin against timer jitter.
	if elapsed < 60*time.Millisecond {
		t.Errorf("grants too fast for configured rate: %v elapsed", elapsed)
	}
	if elapsed > 2*time.Second {
		t.Errorf("grants unexpectedly slow: %v elapsed", elapsed)
	}
}

func TestConcurrentAcquireGrantsEveryCaller(t *testing.T) {
	rl := New(6000, 1, testLogger())
	defer rl.Stop()

	ctx := context.Background()

	const callers = 20
	var wg sync.WaitGroup
	errCh := make(chan error, callers)

	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- rl.Acquire(ctx)
		}()
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
}

func TestAcquireHonorsContextCancellation(t *testing.T) {
	// 6 rpm = one token every 10 seconds.
	rl := New(6, 1, testLogger())
	defer rl.Stop()

	if err := rl.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error on burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := rl.Acquire(ctx)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("cancelled acquire took too long: %v", time.Since(start))
	}
}

func TestAcquireAfterStopFails(t *testing.T) {
	rl := New(3000, 1, testLogger())
	rl.Stop()

	if err := rl.Acquire(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error after stop, got %v", err)
	}
}
