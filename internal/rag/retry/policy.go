// Package retry holds the backoff policy shared by every rate limited upstream call
// (embeddings, OCR and the chat path query embedding).
package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/metrics"
	"github.com/openai/openai-go"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Policy struct {
	Name        string
	MaxAttempts int
	BaseDelay   time.Duration
	// Backoff returns the wait before the next attempt. attempt starts at 1.
	Backoff   func(base time.Duration, attempt int) time.Duration
	Retryable func(err error) bool
	// AttemptTimeout bounds each call, zero means the parent deadline only.
	AttemptTimeout time.Duration
	Sleep          func(ctx context.Context, d time.Duration) error
}

// Default is the rate limit policy used in production: 3 attempts, 5s * attempt.
func Default(name string, attemptTimeout time.Duration) Policy {
	return Policy{
		Name:           name,
		MaxAttempts:    config.RetryMaxAttempts,
		BaseDelay:      config.RetryBaseDelay,
		Backoff:        Linear,
		Retryable:      IsRateLimited,
		AttemptTimeout: attemptTimeout,
	}
}

func Linear(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(attempt)
}

// Do runs op until it succeeds, returns a non retryable error or runs out of attempts.
// Exhaustion wraps both commonModels.ErrRateLimitedUpstream and the last upstream error.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = Linear
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRateLimited
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = p.call(ctx, op)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", p.Name, ctxErr)
		}
		if !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		metrics.CountRetry(p.Name)
		if sleepErr := sleep(ctx, backoff(p.BaseDelay, attempt)); sleepErr != nil {
			return fmt.Errorf("%s: %w", p.Name, sleepErr)
		}
	}
	return fmt.Errorf("%w: %s gave up after %d attempts: %w", commonModels.ErrRateLimitedUpstream, p.Name, attempts, err)
}

func (p Policy) call(ctx context.Context, op func(ctx context.Context) error) error {
	if p.AttemptTimeout <= 0 {
		return op(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, p.AttemptTimeout)
	defer cancel()
	return op(attemptCtx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsRateLimited reports whether err is an upstream "slow down" signal from any provider we talk to.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, commonModels.ErrRateLimitedUpstream) {
		return true
	}
	if st, ok := status.FromError(err); ok && st.Code() == codes.ResourceExhausted {
		return true
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && apiErrPtr.Code == http.StatusTooManyRequests {
		return true
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) && openaiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return rateLimitText.MatchString(msg) || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// rateLimitText finds a 429 that is reported as a status, e.g. "status 429", "Error 429:",
// "statusCode=429", "HTTP/1.1 429" or "429 Too Many Requests".
var rateLimitText = regexp.MustCompile(`(?i)(\b(status[_ ]?code|status|code|error|http/\d(\.\d)?)\b[\s:=]*429\b|\b429\s+too many requests)`)
