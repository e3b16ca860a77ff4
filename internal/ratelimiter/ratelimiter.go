package ratelimiter

import (
	"context"
	"log/slog"
	"time"
)

const queueSize = 1024

type waiter struct {
	ctx   context.Context
	grant chan error
}

// RateLimiter is a process-wide token bucket bounding outbound generation
// requests. Tokens refill continuously at requestsPerMinute/60 per second
// up to the burst capacity, and waiters are granted strictly in arrival
// order by a single queue-draining goroutine, so no two callers can ever
// consume the same token.
type RateLimiter struct {
	queue  chan waiter
	rate   float64
	burst  float64
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	log    *slog.Logger
}

func New(requestsPerMinute float64, burst int, log *slog.Logger) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	rl := &RateLimiter{
		queue:  make(chan waiter, queueSize),
		rate:   requestsPerMinute / 60.0,
		burst:  float64(burst),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		log:    log,
	}

	go rl.processQueue()

	return rl
}

// Acquire blocks until one token is available, then consumes it. It
// returns early with the context error if ctx is done or the limiter is
// stopped; it never fails for any other reason.
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	w := waiter{
		ctx:   ctx,
		grant: make(chan error, 1),
	}

	select {
	case rl.queue <- w:
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.ctx.Done():
		return rl.ctx.Err()
	}

	select {
	case err := <-w.grant:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.ctx.Done():
		return rl.ctx.Err()
	}
}

func (rl *RateLimiter) Stop() {
	rl.cancel()
	<-rl.done
}

func (rl *RateLimiter) processQueue() {
	defer close(rl.done)

	tokens := rl.burst
	last := time.Now()

	for {
		select {
		case w := <-rl.queue:
			tokens, last = rl.handleWaiter(w, tokens, last)
		case <-rl.ctx.Done():
			rl.drainPending()

			return
		}
	}
}

func (rl *RateLimiter) handleWaiter(
	w waiter,
	tokens float64,
	last time.Time,
) (float64, time.Time) {
	// A waiter cancelled while queued must not consume a token.
	if err := w.ctx.Err(); err != nil {
		w.grant <- err

		return tokens, last
	}

	now := time.Now()
	tokens = refill(tokens, rl.rate, rl.burst, last, now)
	last = now

	if tokens < 1 {
		delay := delayForToken(tokens, rl.rate)

		rl.log.DebugContext(rl.ctx, "Rate limiting request",
			"delay", delay,
			"queueLen", len(rl.queue))

		select {
		case <-time.After(delay):
			now = time.Now()
			tokens = refill(tokens, rl.rate, rl.burst, last, now)
			last = now
		case <-w.ctx.Done():
			w.grant <- w.ctx.Err()

			return tokens, last
		case <-rl.ctx.Done():
			w.grant <- rl.ctx.Err()

			return tokens, last
		}
	}

	// Timer rounding may leave the bucket marginally short of one full
	// token after the computed delay has elapsed.
	tokens = max(tokens, 1)
	tokens--

	w.grant <- nil

	return tokens, last
}

func (rl *RateLimiter) drainPending() {
	for {
		select {
		case w := <-rl.queue:
			w.grant <- rl.ctx.Err()
		default:
			return
		}
	}
}

func refill(
	tokens float64,
	rate float64,
	burst float64,
	last time.Time,
	now time.Time,
) float64 {
	elapsed := now.Sub(last).Seconds()
	if elapsed <= 0 {
		return tokens
	}

	return min(tokens+elapsed*rate, burst)
}

func delayForToken(tokens float64, rate float64) time.Duration {
	missing := 1 - tokens
	if missing <= 0 {
		return 0
	}

	return time.Duration(missing / rate * float64(time.Second))
}
