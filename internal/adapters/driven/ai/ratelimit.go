package ai

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// defaultBackoff is how long calls pause after a provider reports 429.
const defaultBackoff = 30 * time.Second

// RateLimiter paces provider requests with a token bucket.
// After a quota rejection every caller waits out a backoff window.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
}

// NewRateLimiter creates a limiter from settings.
// A non-positive rate yields a limiter that never blocks.
func NewRateLimiter(cfg domain.RateLimitSettings) *RateLimiter {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, burst),
		backoff: defaultBackoff,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		timer := time.NewTimer(time.Until(retryAt))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError starts a backoff window.
func (r *RateLimiter) RecordRateLimitError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(r.backoff)
}

// Allow reports whether a request can be made immediately without blocking.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}

// observe records a backoff when err is a provider 429.
// The error itself is passed through untouched; nothing is retried.
func (r *RateLimiter) observe(err error) error {
	var pe *domain.ProviderError
	if errors.As(err, &pe) && pe.StatusCode == http.StatusTooManyRequests {
		r.RecordRateLimitError()
	}
	return err
}

// RateLimitedEmbedding paces an EmbeddingService.
type RateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *RateLimiter
}

// NewRateLimitedEmbedding wraps svc so every call first waits on limiter.
func NewRateLimitedEmbedding(svc driven.EmbeddingService, limiter *RateLimiter) *RateLimitedEmbedding {
	return &RateLimitedEmbedding{EmbeddingService: svc, limiter: limiter}
}

// Embed waits for a token, then embeds text.
func (e *RateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vec, err := e.EmbeddingService.Embed(ctx, text)
	return vec, e.limiter.observe(err)
}

// EmbedBatch waits for a token, then embeds the batch in one request.
func (e *RateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vecs, err := e.EmbeddingService.EmbedBatch(ctx, texts)
	return vecs, e.limiter.observe(err)
}

// RateLimitedLLM paces an LLMService.
type RateLimitedLLM struct {
	driven.LLMService
	limiter *RateLimiter
}

// NewRateLimitedLLM wraps svc so every chat first waits on limiter.
func NewRateLimitedLLM(svc driven.LLMService, limiter *RateLimiter) *RateLimitedLLM {
	return &RateLimitedLLM{LLMService: svc, limiter: limiter}
}

// Chat waits for a token, then forwards the conversation.
func (l *RateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	reply, err := l.LLMService.Chat(ctx, messages, opts)
	return reply, l.limiter.observe(err)
}
