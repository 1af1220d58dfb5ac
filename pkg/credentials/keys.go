// Package credentials resolves backend API keys from call-time arguments,
// the environment and key files, and decides which backends are configured.
package credentials

import (
	"fmt"
	"strings"
)

// Provider names a credentialed backend.
type Provider string

const (
	ProviderGemini     Provider = "gemini"
	ProviderQwen       Provider = "qwen"
	ProviderOpenRouter Provider = "openrouter"
	ProviderAnthropic  Provider = "anthropic"
)

// Providers lists every credentialed provider in display order.
var Providers = []Provider{ProviderGemini, ProviderQwen, ProviderOpenRouter, ProviderAnthropic}

// ParseProvider maps a user supplied name to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gemini", "google":
		return ProviderGemini, nil
	case "qwen", "dashscope":
		return ProviderQwen, nil
	case "openrouter", "aggregator":
		return ProviderOpenRouter, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	default:
		return "", fmt.Errorf("unknown provider %q (expected gemini, qwen, openrouter or anthropic)", s)
	}
}

// EnvVar is the primary variable name used for the provider, both in the
// environment and in key files.
func (p Provider) EnvVar() string {
	switch p {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderQwen:
		return "QWEN_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// fallbackEnvVar is only consulted in the environment tier.
func (p Provider) fallbackEnvVar() string {
	switch p {
	case ProviderGemini:
		return "GOOGLE_API_KEY"
	case ProviderQwen:
		return "ALIBABA_CLOUD_ACCESS_KEY_SECRET"
	default:
		return ""
	}
}

// Credentials is one set of raw API keys. Empty means absent.
type Credentials struct {
	Gemini     string `json:"gemini,omitempty"`
	Qwen       string `json:"qwen,omitempty"`
	OpenRouter string `json:"openrouter,omitempty"`
	Anthropic  string `json:"anthropic,omitempty"`
}

// Get returns the key for p.
func (c Credentials) Get(p Provider) string {
	switch p {
	case ProviderGemini:
		return c.Gemini
	case ProviderQwen:
		return c.Qwen
	case ProviderOpenRouter:
		return c.OpenRouter
	case ProviderAnthropic:
		return c.Anthropic
	default:
		return ""
	}
}

// Any reports whether at least one key is present.
func (c Credentials) Any() bool {
	return c.Gemini != "" || c.Qwen != "" || c.OpenRouter != "" || c.Anthropic != ""
}

func fromMap(values map[string]string, withFallbacks bool) Credentials {
	get := func(p Provider) string {
		v := strings.TrimSpace(values[p.EnvVar()])
		if v == "" && withFallbacks && p.fallbackEnvVar() != "" {
			v = strings.TrimSpace(values[p.fallbackEnvVar()])
		}
		return v
	}
	return Credentials{
		Gemini:     get(ProviderGemini),
		Qwen:       get(ProviderQwen),
		OpenRouter: get(ProviderOpenRouter),
		Anthropic:  get(ProviderAnthropic),
	}
}

// Source identifies the tier that supplied a credential set.
type Source int

const (
	SourceNone Source = iota
	SourceCLI
	SourceEnvironment
	SourceLocalFile
	SourceGlobalFile
)

func (s Source) String() string {
	switch s {
	case SourceCLI:
		return "cli"
	case SourceEnvironment:
		return "environment"
	case SourceLocalFile:
		return "local_file"
	case SourceGlobalFile:
		return "global_file"
	default:
		return "none"
	}
}

// Resolution is the outcome of credential resolution.
type Resolution struct {
	Credentials Credentials
	Source      Source
	// Path is the file that supplied the credentials, when Source is a file tier.
	Path     string
	Warnings []string
}
