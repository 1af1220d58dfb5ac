package ai

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/felixgeelhaar/hybridai/pkg/domain/ai"
)

// MockProvider answers without any network access. It backs --dry-run.
type MockProvider struct {
	Model string
}

func (p *MockProvider) ID() string {
	return "mock:" + p.Model
}

func (p *MockProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError("mock", req.Model, err)
	}
	model := req.Model
	if model == "" {
		model = p.Model
	}

	first, _, _ := strings.Cut(strings.TrimSpace(req.Prompt), "\n")
	if utf8.RuneCountInString(first) > 80 {
		first = string([]rune(first)[:80]) + "..."
	}
	text := fmt.Sprintf("[dry run] %s received %d characters: %s", model, utf8.RuneCountInString(req.Prompt), first)

	return &ai.CompletionResponse{
		Text:  text,
		Model: model,
		Usage: ai.TokenUsage{
			InputTokens:  len(req.Prompt) / 4,
			OutputTokens: len(text) / 4,
		},
	}, nil
}
