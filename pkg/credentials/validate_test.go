package credentials_test

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/hybridai/pkg/credentials"
	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name     string
		provider credentials.Provider
		key      string
		valid    bool
	}{
		{"gemini ok", credentials.ProviderGemini, "AIzaSy_abc-123456", true},
		{"gemini short", credentials.ProviderGemini, "abc", false},
		{"gemini bad chars", credentials.ProviderGemini, "abc def ghi jkl", false},
		{"gemini placeholder", credentials.ProviderGemini, "your_gemini_api_key_here", false},
		{"openrouter ok", credentials.ProviderOpenRouter, "sk-or-v1-0123456789", true},
		{"qwen alnum", credentials.ProviderQwen, "abcdef123456", true},
		{"qwen long with symbols", credentials.ProviderQwen, "sk-abcdef-0123456789xyz", true},
		{"qwen short with symbols", credentials.ProviderQwen, "sk-abc-1234", false},
		{"anthropic ok", credentials.ProviderAnthropic, "sk-ant-api03-abcdefghijkl", true},
		{"anthropic no prefix", credentials.ProviderAnthropic, "sk-abcdefghijklmnopqrst", false},
		{"anthropic short", credentials.ProviderAnthropic, "sk-ant-abcd", false},
		{"empty", credentials.ProviderGemini, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := credentials.ValidateKey(tt.provider, tt.key)
			if (err == nil) != tt.valid {
				t.Fatalf("ValidateKey(%s, %q) = %v, want valid=%v", tt.provider, tt.key, err, tt.valid)
			}
			if err != nil && !errors.Is(err, credentials.ErrInvalidKey) {
				t.Errorf("expected ErrInvalidKey, got %v", err)
			}
		})
	}
}

func TestCheckValidity(t *testing.T) {
	tests := []struct {
		name  string
		creds credentials.Credentials
		local string
		want  routing.CapabilitySet
	}{
		{
			name:  "nothing",
			creds: credentials.Credentials{},
			local: "",
			want:  routing.CapabilitySet{},
		},
		{
			name:  "local only",
			creds: credentials.Credentials{},
			local: "http://localhost:11434",
			want:  routing.CapabilitySet{Local: true},
		},
		{
			name:  "malformed keys count as absent",
			creds: credentials.Credentials{Gemini: "short", OpenRouter: "your_openrouter_api_key_here"},
			local: "not a url",
			want:  routing.CapabilitySet{},
		},
		{
			name:  "aggregator and remote via qwen",
			creds: credentials.Credentials{Qwen: "qwenkey0123456", OpenRouter: "sk-or-v1-0123456789"},
			local: "https://gpu.internal:8443",
			want:  routing.CapabilitySet{Local: true, Aggregator: true, Remote: true},
		},
		{
			name:  "remote via anthropic",
			creds: credentials.Credentials{Anthropic: "sk-ant-api03-abcdefghijkl"},
			local: "ftp://localhost",
			want:  routing.CapabilitySet{Remote: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := credentials.CheckValidity(tt.creds, tt.local); got != tt.want {
				t.Errorf("CheckValidity = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValid_ReportsProblems(t *testing.T) {
	valid, problems := credentials.Valid(credentials.Credentials{
		Gemini:     "AIzaSy_abc-123456",
		OpenRouter: "bad",
	})
	if valid.Gemini == "" || valid.OpenRouter != "" {
		t.Errorf("unexpected valid set %+v", valid)
	}
	if len(problems) != 1 {
		t.Fatalf("expected one problem, got %v", problems)
	}
	var ce *credentials.ConfigurationError
	if !errors.As(problems[0], &ce) || ce.Provider != credentials.ProviderOpenRouter {
		t.Errorf("unexpected problem %v", problems[0])
	}
}

func TestMaskKey(t *testing.T) {
	tests := map[string]string{
		"":                          "(not set)",
		"shortkey":                  "***",
		"sk-ant-api03-abcdefghWXYZ": "sk-ant-...WXYZ",
	}
	for in, want := range tests {
		if got := credentials.MaskKey(in); got != want {
			t.Errorf("MaskKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseProvider(t *testing.T) {
	if p, err := credentials.ParseProvider("Claude"); err != nil || p != credentials.ProviderAnthropic {
		t.Errorf("got %v, %v", p, err)
	}
	if _, err := credentials.ParseProvider("openai"); err == nil {
		t.Error("expected error for unknown provider")
	}
}
