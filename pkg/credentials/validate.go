package credentials

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
)

// ErrInvalidKey is matched by every *ConfigurationError.
var ErrInvalidKey = errors.New("invalid API key")

// ConfigurationError reports a malformed or absent credential. It is never
// fatal: the backend is treated as not configured.
type ConfigurationError struct {
	Provider Provider
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s key %s", e.Provider, e.Reason)
}

// Is allows errors.Is to work with ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidKey
}

const minKeyLength = 10

var (
	tokenKey        = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	alnumKey        = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	placeholderKey  = regexp.MustCompile(`(?i)^your_.*_here$`)
	anthropicPrefix = "sk-ant-"
)

// ValidateKey checks the shape of a key. No network call is made.
func ValidateKey(p Provider, key string) error {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return &ConfigurationError{Provider: p, Reason: "is not set"}
	case placeholderKey.MatchString(key):
		return &ConfigurationError{Provider: p, Reason: "is still a placeholder"}
	case len(key) < minKeyLength:
		return &ConfigurationError{Provider: p, Reason: fmt.Sprintf("is too short (minimum %d characters)", minKeyLength)}
	}

	switch p {
	case ProviderGemini, ProviderOpenRouter:
		if !tokenKey.MatchString(key) {
			return &ConfigurationError{Provider: p, Reason: "contains invalid characters"}
		}
	case ProviderQwen:
		if !alnumKey.MatchString(key) && len(key) <= 20 {
			return &ConfigurationError{Provider: p, Reason: "has an unexpected format"}
		}
	case ProviderAnthropic:
		if !strings.HasPrefix(key, anthropicPrefix) {
			return &ConfigurationError{Provider: p, Reason: "should start with " + anthropicPrefix}
		}
		if len(key) < 20 {
			return &ConfigurationError{Provider: p, Reason: "is too short (minimum 20 characters)"}
		}
	default:
		return &ConfigurationError{Provider: p, Reason: "belongs to an unknown provider"}
	}
	return nil
}

// Valid returns a copy of c with every malformed key cleared, plus the
// validation problems for keys that were present but rejected.
func Valid(c Credentials) (Credentials, []error) {
	var out Credentials
	var problems []error
	for _, p := range Providers {
		key := c.Get(p)
		if key == "" {
			continue
		}
		if err := ValidateKey(p, key); err != nil {
			problems = append(problems, err)
			continue
		}
		switch p {
		case ProviderGemini:
			out.Gemini = key
		case ProviderQwen:
			out.Qwen = key
		case ProviderOpenRouter:
			out.OpenRouter = key
		case ProviderAnthropic:
			out.Anthropic = key
		}
	}
	return out, problems
}

// ValidLocalEndpoint reports whether endpoint is a well-formed http(s) URL.
func ValidLocalEndpoint(endpoint string) bool {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// CheckValidity turns credentials and the local endpoint into a capability
// set. Malformed keys count as absent.
func CheckValidity(c Credentials, localEndpoint string) routing.CapabilitySet {
	valid, _ := Valid(c)
	return routing.CapabilitySet{
		Local:      ValidLocalEndpoint(localEndpoint),
		Aggregator: valid.OpenRouter != "",
		Remote:     valid.Gemini != "" || valid.Qwen != "" || valid.Anthropic != "",
	}
}
