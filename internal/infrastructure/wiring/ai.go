package wiring

import (
	"net/http"

	"github.com/felixgeelhaar/hybridai/internal/infrastructure/config"
	infraai "github.com/felixgeelhaar/hybridai/pkg/ai"
	"github.com/felixgeelhaar/hybridai/pkg/application"
	"github.com/felixgeelhaar/hybridai/pkg/credentials"
	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
)

// ResilienceFromConfig maps the timeouts and retry settings to the backend
// resilience policy.
func ResilienceFromConfig(cfg *config.Config) infraai.ResilienceConfig {
	rc := infraai.DefaultResilienceConfig()
	if cfg.Timeouts.Call > 0 {
		rc.Timeout = cfg.Timeouts.Call
	}
	rc.MaxRetries = cfg.Resilience.MaxRetries
	if cfg.Resilience.RetryDelay > 0 {
		rc.RetryDelay = cfg.Resilience.RetryDelay
	}
	return rc
}

// EndpointsFromConfig collects every backend base URL.
func EndpointsFromConfig(cfg *config.Config) infraai.Endpoints {
	return infraai.Endpoints{
		Local:      cfg.Local.BaseURL,
		Aggregator: cfg.Aggregator.BaseURL,
		Gemini:     cfg.Remote.GeminiBaseURL,
		Qwen:       cfg.Remote.QwenBaseURL,
		Anthropic:  cfg.Remote.AnthropicBaseURL,
	}
}

// RouterConfigFromConfig maps classifier and model settings.
func RouterConfigFromConfig(cfg *config.Config) application.RouterConfig {
	return application.RouterConfig{
		Thresholds: routing.Thresholds{
			LowMax:    cfg.Complexity.LowMax,
			MediumMax: cfg.Complexity.MediumMax,
		},
		Descriptions: map[routing.ComplexityLevel]string{
			routing.LevelLow:    cfg.Complexity.Descriptions.Low,
			routing.LevelMedium: cfg.Complexity.Descriptions.Medium,
			routing.LevelHigh:   cfg.Complexity.Descriptions.High,
		},
		Models: routing.ModelDefaults{
			Local:            cfg.Local.DefaultModel,
			Aggregator:       cfg.Aggregator.DefaultModel,
			AggregatorStrong: cfg.Aggregator.StrongModel,
			Remote:           cfg.Remote.DefaultModel,
		},
		LocalEndpoint: cfg.Local.BaseURL,
	}
}

// NewBackendFactory returns the factory the router service uses to build
// backend clients for each invocation.
func NewBackendFactory(cfg *config.Config, client *http.Client, observer infraai.CallObserver) application.BackendFactory {
	endpoints := EndpointsFromConfig(cfg)
	resilience := ResilienceFromConfig(cfg)
	return func(keys credentials.Credentials, dryRun bool) application.Backends {
		opts := []infraai.BackendOption{
			infraai.WithResilience(resilience),
			infraai.WithDryRun(dryRun),
		}
		if client != nil {
			opts = append(opts, infraai.WithHTTPClient(client))
		}
		if observer != nil {
			opts = append(opts, infraai.WithCallObserver(observer))
		}
		return infraai.NewBackendSet(endpoints, keys, opts...)
	}
}
