package routing

import "fmt"

// ModelDefaults names the default model for each backend role.
type ModelDefaults struct {
	Local            string
	Aggregator       string
	AggregatorStrong string
	Remote           string
}

// Forced carries the caller's routing overrides.
type Forced struct {
	Local  bool
	Remote bool
	// Model replaces the primary model of whatever decision is made.
	Model string
}

// Engine turns a complexity level and a capability set into a Decision.
// It holds no state between calls.
type Engine struct {
	models ModelDefaults
}

// NewEngine creates a decision engine. Empty model names fall back to the
// stock defaults.
func NewEngine(models ModelDefaults) *Engine {
	if models.Local == "" {
		models.Local = "smollm2:1.7b"
	}
	if models.Aggregator == "" {
		models.Aggregator = "mistralai/mistral-7b-instruct-v0.2"
	}
	if models.AggregatorStrong == "" {
		models.AggregatorStrong = "meta-llama/llama-3-70b-instruct"
	}
	if models.Remote == "" {
		models.Remote = "gemini-pro"
	}
	return &Engine{models: models}
}

// Models returns the resolved model defaults.
func (e *Engine) Models() ModelDefaults {
	return e.models
}

// Decide applies the routing rules. Forced local is checked before forced
// remote; both take precedence over the level. Decide never fails: when no
// backend fits, the result is a LocalDecision whose justification says so.
func (e *Engine) Decide(level ComplexityLevel, caps CapabilitySet, forced Forced) Decision {
	d := e.decide(level, caps, forced)
	if forced.Model == "" {
		return d
	}
	return withPrimaryModel(d, forced.Model)
}

func (e *Engine) decide(level ComplexityLevel, caps CapabilitySet, forced Forced) Decision {
	if forced.Local {
		if caps.Aggregator {
			return AggregatorDecision{
				Model:  e.models.Aggregator,
				Reason: "forced local: aggregator configured, using it as the non-remote backend",
			}
		}
		return LocalDecision{
			Model:  e.models.Local,
			Reason: "forced local: aggregator not configured, using the local model server",
		}
	}

	if forced.Remote {
		return RemoteDecision{
			Model:  e.models.Remote,
			Reason: "forced remote: credentials are checked when the call is made",
		}
	}

	switch level {
	case LevelLow:
		if caps.Aggregator {
			return AggregatorDecision{
				Model:  e.models.Aggregator,
				Reason: "low complexity: aggregator configured, preferring its free tier",
			}
		}
		if caps.Local {
			return LocalDecision{
				Model:  e.models.Local,
				Reason: "low complexity: aggregator not configured, using the local model server",
			}
		}
		return LocalDecision{
			Model:  e.models.Local,
			Reason: "low complexity: no backend configured, defaulting to the local model server",
		}

	case LevelMedium:
		if caps.Remote {
			executor := ModelRef{Backend: BackendLocal, Model: e.models.Local}
			via := "local model server"
			if caps.Aggregator {
				executor = ModelRef{Backend: BackendAggregator, Model: e.models.Aggregator}
				via = "aggregator"
			}
			return CollaborativeDecision{
				Planner:  ModelRef{Backend: BackendRemote, Model: e.models.Remote},
				Executor: executor,
				Reason:   fmt.Sprintf("medium complexity: remote plans and reviews, %s executes", via),
			}
		}
		if caps.Aggregator {
			return AggregatorDecision{
				Model:  e.models.Aggregator,
				Reason: "medium complexity: remote not configured, collaboration needs a planner; using aggregator only",
			}
		}
		return LocalDecision{
			Model:  e.models.Local,
			Reason: "medium complexity: degraded to local, neither remote nor aggregator configured",
		}

	case LevelHigh:
		if caps.Remote {
			return RemoteDecision{
				Model:  e.models.Remote,
				Reason: "high complexity: remote configured, using the strongest backend",
			}
		}
		if caps.Aggregator {
			return AggregatorDecision{
				Model:  e.models.AggregatorStrong,
				Reason: "high complexity: remote not configured, using a high-capability aggregator model",
			}
		}
		return LocalDecision{
			Model:  e.models.Local,
			Reason: "high complexity: forced degradation to local, neither remote nor aggregator configured",
		}
	}

	return LocalDecision{
		Model:  e.models.Local,
		Reason: fmt.Sprintf("unrecognized complexity level %d: degraded to local", int(level)),
	}
}

func withPrimaryModel(d Decision, model string) Decision {
	switch v := d.(type) {
	case LocalDecision:
		v.Model = model
		return v
	case AggregatorDecision:
		v.Model = model
		return v
	case RemoteDecision:
		v.Model = model
		return v
	case CollaborativeDecision:
		v.Planner.Model = model
		return v
	default:
		return d
	}
}
