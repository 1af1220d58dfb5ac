package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/felixgeelhaar/hybridai/pkg/domain/ai"
)

// ResilienceConfig bounds a single backend call.
type ResilienceConfig struct {
	// Timeout is the budget for the whole call, retries included.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts for transient failures.
	// Zero disables retrying.
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultResilienceConfig returns a 120s budget with retries disabled.
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		Timeout:    120 * time.Second,
		MaxRetries: 0,
		RetryDelay: time.Second,
	}
}

type ResilientProvider struct {
	inner ai.Provider
	cfg   ResilienceConfig
}

func NewResilientProvider(inner ai.Provider) *ResilientProvider {
	return NewResilientProviderWithConfig(inner, DefaultResilienceConfig())
}

func NewResilientProviderWithConfig(inner ai.Provider, cfg ResilienceConfig) *ResilientProvider {
	return &ResilientProvider{inner: inner, cfg: cfg}
}

func (p *ResilientProvider) ID() string {
	return p.inner.ID()
}

func (p *ResilientProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	call := p.inner.Complete
	if p.cfg.MaxRetries > 0 {
		call = p.withRetry
	}

	if p.cfg.Timeout <= 0 {
		return call(ctx, req)
	}

	t := timeout.New[*ai.CompletionResponse](timeout.Config{
		DefaultTimeout: p.cfg.Timeout,
	})

	start := time.Now()
	resp, err := t.Execute(ctx, p.cfg.Timeout, func(ctx context.Context) (*ai.CompletionResponse, error) {
		return call(ctx, req)
	})
	if err == nil {
		return resp, nil
	}

	if kind, ok := ai.KindOf(err); ok && kind != ai.KindBackendUnavailable {
		return nil, err
	}
	if ctx.Err() == nil && (errors.Is(err, context.DeadlineExceeded) || time.Since(start) >= p.cfg.Timeout) {
		return nil, ai.NewBackendError(ai.KindTimeout, p.inner.ID(), req.Model,
			fmt.Errorf("no response within %s: %w", p.cfg.Timeout, err))
	}
	if _, ok := ai.KindOf(err); ok {
		return nil, err
	}
	return nil, transportError(p.inner.ID(), req.Model, err)
}

// withRetry retries only transient kinds. Permanent failures end the loop
// immediately and are reported as they are.
func (p *ResilientProvider) withRetry(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	r := retry.New[*ai.CompletionResponse](retry.Config{
		MaxAttempts:   p.cfg.MaxRetries + 1,
		InitialDelay:  p.cfg.RetryDelay,
		BackoffPolicy: retry.BackoffExponential,
	})

	var permanent error
	resp, err := r.Do(ctx, func(ctx context.Context) (*ai.CompletionResponse, error) {
		resp, err := p.inner.Complete(ctx, req)
		if err != nil && !transient(err) {
			permanent = err
			return nil, nil
		}
		return resp, err
	})
	if permanent != nil {
		return nil, permanent
	}
	return resp, err
}

func transient(err error) bool {
	kind, ok := ai.KindOf(err)
	if !ok {
		return false
	}
	switch kind {
	case ai.KindBackendUnavailable, ai.KindRateLimited, ai.KindTimeout:
		return true
	default:
		return false
	}
}
