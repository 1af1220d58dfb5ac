package ai

import (
	"context"
)

// CompletionRequest represents a prompt to one model.
type CompletionRequest struct {
	Model       string
	Prompt      string
	System      string
	Temperature float32
	MaxTokens   int
}

// CompletionResponse represents the model's answer.
type CompletionResponse struct {
	Text  string
	Usage TokenUsage
	Model string
}

// TokenUsage tracks costs.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is the interface for a single model API.
type Provider interface {
	ID() string
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// BackendClient executes one inference call against one backend.
// Failures are reported as *BackendError.
type BackendClient interface {
	ExecuteTask(ctx context.Context, prompt, model string) (string, error)
}

// BackendClientFunc adapts a function to BackendClient.
type BackendClientFunc func(ctx context.Context, prompt, model string) (string, error)

func (f BackendClientFunc) ExecuteTask(ctx context.Context, prompt, model string) (string, error) {
	return f(ctx, prompt, model)
}
