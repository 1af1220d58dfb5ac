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

const defaultQwenURL = "https://dashscope.aliyuncs.com/api/v1"

// QwenProvider calls Alibaba DashScope text generation.
type QwenProvider struct {
	Model      string
	APIKey     string
	baseURL    string
	httpClient *http.Client
}

func NewQwenProvider(model, apiKey, baseURL string) *QwenProvider {
	return NewQwenProviderWithClient(model, apiKey, baseURL, nil)
}

// NewQwenProviderWithClient creates a provider with custom HTTP client and base URL (for testing).
func NewQwenProviderWithClient(model, apiKey, baseURL string, client *http.Client) *QwenProvider {
	if model == "" {
		model = "qwen-turbo"
	}
	if baseURL == "" {
		baseURL = defaultQwenURL
	}
	return &QwenProvider{
		Model:      model,
		APIKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

func (p *QwenProvider) ID() string {
	return "qwen:" + p.Model
}

type qwenRequest struct {
	Model      string         `json:"model"`
	Input      qwenInput      `json:"input"`
	Parameters qwenParameters `json:"parameters"`
}

type qwenInput struct {
	Prompt string `json:"prompt"`
}

type qwenParameters struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
}

type qwenResponse struct {
	Output struct {
		Text string `json:"text"`
	} `json:"output"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (p *QwenProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.Model
	}
	if p.APIKey == "" {
		return nil, authError("qwen", model, "Qwen API key not provided (set QWEN_API_KEY)")
	}

	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + req.Prompt
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.7
	}

	body, err := json.Marshal(qwenRequest{
		Model:      model,
		Input:      qwenInput{Prompt: prompt},
		Parameters: qwenParameters{MaxTokens: maxTokens, Temperature: temperature},
	})
	if err != nil {
		return nil, protocolError("qwen", model, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/services/aigc/text-generation/generation", bytes.NewReader(body))
	if err != nil {
		return nil, protocolError("qwen", model, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.APIKey)

	client := p.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, transportError("qwen", model, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("qwen", model, resp)
	}

	var qResp qwenResponse
	if err := json.NewDecoder(resp.Body).Decode(&qResp); err != nil {
		return nil, protocolError("qwen", model, fmt.Errorf("failed to decode Qwen response: %w", err))
	}
	if qResp.Output.Text == "" {
		return nil, protocolError("qwen", model, fmt.Errorf("Qwen API returned no output text"))
	}

	return &ai.CompletionResponse{
		Text:  qResp.Output.Text,
		Model: model,
		Usage: ai.TokenUsage{
			InputTokens:  qResp.Usage.InputTokens,
			OutputTokens: qResp.Usage.OutputTokens,
		},
	}, nil
}
