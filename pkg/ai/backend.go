package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/hybridai/pkg/credentials"
	"github.com/felixgeelhaar/hybridai/pkg/domain/ai"
	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
)

// CallObserver is notified after every backend call. outcome is "ok" or the
// error kind.
type CallObserver interface {
	ObserveCall(backend, model, outcome string, elapsed time.Duration)
}

// Endpoints holds the base URLs of every backend. Empty means the public default.
type Endpoints struct {
	Local      string
	Aggregator string
	Gemini     string
	Qwen       string
	Anthropic  string
}

// ProviderBackend adapts model providers to the BackendClient contract.
type ProviderBackend struct {
	name       routing.Backend
	resolve    func(model string) (ai.Provider, error)
	resilience ResilienceConfig
	observer   CallObserver
}

// NewProviderBackend creates a backend whose provider is picked per model.
func NewProviderBackend(name routing.Backend, resolve func(model string) (ai.Provider, error), cfg ResilienceConfig, observer CallObserver) *ProviderBackend {
	return &ProviderBackend{name: name, resolve: resolve, resilience: cfg, observer: observer}
}

// ExecuteTask runs prompt on model. Every failure is a *ai.BackendError.
func (b *ProviderBackend) ExecuteTask(ctx context.Context, prompt, model string) (string, error) {
	start := time.Now()
	text, err := b.execute(ctx, prompt, model)
	if b.observer != nil {
		outcome := "ok"
		if kind, ok := ai.KindOf(err); ok {
			outcome = kind.String()
		}
		b.observer.ObserveCall(string(b.name), model, outcome, time.Since(start))
	}
	return text, err
}

func (b *ProviderBackend) execute(ctx context.Context, prompt, model string) (string, error) {
	provider, err := b.resolve(model)
	if err != nil {
		return "", b.classify(model, err)
	}

	resp, err := NewResilientProviderWithConfig(provider, b.resilience).Complete(ctx, ai.CompletionRequest{
		Model:  model,
		Prompt: prompt,
	})
	if err != nil {
		return "", b.classify(model, err)
	}
	return resp.Text, nil
}

func (b *ProviderBackend) classify(model string, err error) error {
	var be *ai.BackendError
	if errors.As(err, &be) {
		return err
	}
	return transportError(string(b.name), model, err)
}

// RemoteProviderName picks the direct cloud API for a model name.
func RemoteProviderName(model string) credentials.Provider {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "qwen"):
		return credentials.ProviderQwen
	case strings.HasPrefix(m, "claude"):
		return credentials.ProviderAnthropic
	default:
		return credentials.ProviderGemini
	}
}

// BackendSet holds one client per routing backend.
type BackendSet struct {
	Local      ai.BackendClient
	Aggregator ai.BackendClient
	Remote     ai.BackendClient
}

// For returns the client serving backend b.
func (s *BackendSet) For(b routing.Backend) (ai.BackendClient, bool) {
	switch b {
	case routing.BackendLocal:
		return s.Local, s.Local != nil
	case routing.BackendAggregator:
		return s.Aggregator, s.Aggregator != nil
	case routing.BackendRemote:
		return s.Remote, s.Remote != nil
	default:
		return nil, false
	}
}

type backendOptions struct {
	httpClient *http.Client
	resilience ResilienceConfig
	observer   CallObserver
	dryRun     bool
}

// BackendOption configures NewBackendSet.
type BackendOption func(*backendOptions)

// WithHTTPClient sets the HTTP client for every provider.
func WithHTTPClient(c *http.Client) BackendOption {
	return func(o *backendOptions) { o.httpClient = c }
}

// WithResilience sets the per-call timeout and retry policy.
func WithResilience(cfg ResilienceConfig) BackendOption {
	return func(o *backendOptions) { o.resilience = cfg }
}

// WithCallObserver reports every call to observer.
func WithCallObserver(observer CallObserver) BackendOption {
	return func(o *backendOptions) { o.observer = observer }
}

// WithDryRun replaces every provider with MockProvider.
func WithDryRun(enabled bool) BackendOption {
	return func(o *backendOptions) { o.dryRun = enabled }
}

// NewBackendSet builds the three backend clients. keys should already be
// validated: a missing key only fails when its backend is called.
func NewBackendSet(endpoints Endpoints, keys credentials.Credentials, opts ...BackendOption) *BackendSet {
	o := backendOptions{resilience: DefaultResilienceConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	newBackend := func(name routing.Backend, resolve func(string) (ai.Provider, error)) ai.BackendClient {
		if o.dryRun {
			resolve = func(model string) (ai.Provider, error) {
				return &MockProvider{Model: model}, nil
			}
		}
		return NewProviderBackend(name, resolve, o.resilience, o.observer)
	}

	return &BackendSet{
		Local: newBackend(routing.BackendLocal, func(model string) (ai.Provider, error) {
			return NewOllamaProviderWithClient(model, endpoints.Local, o.httpClient), nil
		}),
		Aggregator: newBackend(routing.BackendAggregator, func(model string) (ai.Provider, error) {
			if keys.OpenRouter == "" {
				return nil, authError("openrouter", model, "no valid OpenRouter API key configured (set OPENROUTER_API_KEY)")
			}
			return NewOpenRouterProviderWithClient(model, keys.OpenRouter, endpoints.Aggregator, o.httpClient), nil
		}),
		Remote: newBackend(routing.BackendRemote, func(model string) (ai.Provider, error) {
			switch RemoteProviderName(model) {
			case credentials.ProviderQwen:
				if keys.Qwen == "" {
					return nil, authError("qwen", model, "no valid Qwen API key configured (set QWEN_API_KEY)")
				}
				return NewQwenProviderWithClient(model, keys.Qwen, endpoints.Qwen, o.httpClient), nil
			case credentials.ProviderAnthropic:
				if keys.Anthropic == "" {
					return nil, authError("anthropic", model, "no valid Anthropic API key configured (set ANTHROPIC_API_KEY)")
				}
				return NewAnthropicProviderWithClient(model, keys.Anthropic, endpoints.Anthropic, o.httpClient), nil
			default:
				if keys.Gemini == "" {
					return nil, authError("gemini", model, "no valid Gemini API key configured (set GEMINI_API_KEY)")
				}
				return NewGeminiProviderWithClient(model, keys.Gemini, endpoints.Gemini, o.httpClient), nil
			}
		}),
	}
}
