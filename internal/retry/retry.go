package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/amishk599/studypack/internal/model"
)

// maxBackoff caps a single wait, including a server-supplied Retry-After.
const maxBackoff = 2 * time.Minute

// Ensure RetryGenerator implements model.Generator.
var _ model.Generator = (*RetryGenerator)(nil)

// RetryGenerator is a decorator that re-sends a prompt after transient
// generation failures, waiting with exponential backoff and jitter between
// attempts. With maxRetries == 0 it calls the inner generator exactly once.
//
// A blank reply with no finish reason is retried at most once. A reply the
// model ended deliberately (model.FinishError) is never retried.
type RetryGenerator struct {
	inner      model.Generator
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetryGenerator wraps a Generator with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewRetryGenerator(inner model.Generator, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryGenerator {
	return &RetryGenerator{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Generate sends prompt to the inner generator, retrying transient errors.
func (g *RetryGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	emptyRetried := false

	for attempt := 0; ; attempt++ {
		text, err := g.inner.Generate(ctx, prompt)
		if err == nil {
			if attempt > 0 {
				g.logger.Info("generation recovered", "attempts", attempt+1, "prompt_chars", len(prompt))
			}
			return text, nil
		}

		if attempt >= g.maxRetries || !isRetryable(err) {
			return "", err
		}
		if isBlankReply(err) {
			if emptyRetried {
				return "", err
			}
			emptyRetried = true
		}

		delay := g.backoffDelay(attempt+1, err)
		g.logger.Warn("generation failed, retrying",
			"attempt", attempt+1,
			"max_retries", g.maxRetries,
			"delay", delay,
			"prompt_chars", len(prompt),
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// backoffDelay computes the wait before retry number attempt (1-based) with
// ±30% jitter. A Retry-After from an HTTP 429 takes precedence. Both are
// capped at maxBackoff.
func (g *RetryGenerator) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return min(httpErr.RetryAfter, maxBackoff)
	}

	delay := g.baseDelay
	for i := 1; i < attempt && delay < maxBackoff; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)

	return min(delay, maxBackoff)
}

// isBlankReply reports an empty reply that carries no finish reason.
func isBlankReply(err error) bool {
	var finish *model.FinishError
	return errors.Is(err, model.ErrEmptyResponse) && !errors.As(err, &finish)
}

// isRetryable reports whether err is a transient failure worth another attempt.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var finish *model.FinishError
	if errors.As(err, &finish) {
		return false
	}
	if errors.Is(err, model.ErrEmptyResponse) {
		return true
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}

	// Network and DNS failures.
	return true
}
