package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/hybridai/pkg/domain/ai"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider calls the OpenRouter aggregator through its
// OpenAI-compatible chat completions endpoint.
type OpenRouterProvider struct {
	Model      string
	APIKey     string
	Referer    string
	Title      string
	baseURL    string
	httpClient *http.Client
}

func NewOpenRouterProvider(model, apiKey, baseURL string) *OpenRouterProvider {
	return NewOpenRouterProviderWithClient(model, apiKey, baseURL, nil)
}

// NewOpenRouterProviderWithClient creates a provider with custom HTTP client (for testing).
func NewOpenRouterProviderWithClient(model, apiKey, baseURL string, client *http.Client) *OpenRouterProvider {
	if model == "" {
		model = "mistralai/mistral-7b-instruct-v0.2"
	}
	if baseURL == "" {
		baseURL = defaultOpenRouterURL
	}
	return &OpenRouterProvider{
		Model:      model,
		APIKey:     apiKey,
		Referer:    "https://github.com/felixgeelhaar/hybridai",
		Title:      "Hybrid AI CLI",
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

func (p *OpenRouterProvider) ID() string {
	return "openrouter:" + p.Model
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *OpenRouterProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.Model
	}
	if p.APIKey == "" {
		return nil, authError("openrouter", model, "OpenRouter API key not provided (set OPENROUTER_API_KEY)")
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	messages := []chatMessage{}
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, protocolError("openrouter", model, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, protocolError("openrouter", model, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.APIKey)
	httpReq.Header.Set("HTTP-Referer", p.Referer)
	httpReq.Header.Set("X-Title", p.Title)

	client := p.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, transportError("openrouter", model, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("openrouter", model, resp)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, protocolError("openrouter", model, fmt.Errorf("failed to decode OpenRouter response: %w", err))
	}

	if len(chatResp.Choices) == 0 {
		return nil, protocolError("openrouter", model, fmt.Errorf("OpenRouter API returned no choices"))
	}

	return &ai.CompletionResponse{
		Text:  chatResp.Choices[0].Message.Content,
		Model: model,
		Usage: ai.TokenUsage{
			InputTokens:  chatResp.Usage.PromptTokens,
			OutputTokens: chatResp.Usage.CompletionTokens,
		},
	}, nil
}
