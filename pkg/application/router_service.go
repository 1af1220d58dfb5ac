package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	infraAI "github.com/felixgeelhaar/hybridai/pkg/ai"
	"github.com/felixgeelhaar/hybridai/pkg/credentials"
	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
)

// ErrEmptyTask is returned when a request has no task text.
var ErrEmptyTask = errors.New("task is empty")

// remoteFallbackModels is used when the configured remote model belongs to a
// provider without a valid key but another remote provider has one.
var remoteFallbackModels = map[credentials.Provider]string{
	credentials.ProviderGemini:    "gemini-pro",
	credentials.ProviderQwen:      "qwen-turbo",
	credentials.ProviderAnthropic: "claude-sonnet-4-20250514",
}

// RouterConfig holds the routing settings read from configuration.
type RouterConfig struct {
	Thresholds    routing.Thresholds
	Descriptions  map[routing.ComplexityLevel]string
	Models        routing.ModelDefaults
	LocalEndpoint string
}

// BackendFactory builds the backend clients for one invocation from its
// validated keys.
type BackendFactory func(keys credentials.Credentials, dryRun bool) Backends

// RouteRequest is one task submission from any surface.
type RouteRequest struct {
	Task string
	// Complexity overrides length-based classification when it names a level.
	Complexity  string
	ForceLocal  bool
	ForceRemote bool
	Model       string
	// Keys are credentials given on the command line or in the request.
	Keys   credentials.Credentials
	DryRun bool
}

// RoutingPlan explains how a task will be routed.
type RoutingPlan struct {
	TaskLength            int                   `json:"task_length"`
	Complexity            string                `json:"complexity"`
	ComplexityDescription string                `json:"complexity_description"`
	Capabilities          routing.CapabilitySet `json:"capabilities"`
	Decision              routing.Summary       `json:"decision"`
	CredentialSource      string                `json:"credential_source"`
	CredentialPath        string                `json:"credential_path,omitempty"`
	Warnings              []string              `json:"warnings,omitempty"`
	DryRun                bool                  `json:"dry_run,omitempty"`

	task     routing.Task
	decision routing.Decision
	keys     credentials.Credentials
}

// RoutingDecision returns the Decision behind the plan.
func (p *RoutingPlan) RoutingDecision() routing.Decision {
	return p.decision
}

// RouterService classifies tasks, resolves credentials, decides a route and
// runs it.
type RouterService struct {
	classifier    *routing.Classifier
	models        routing.ModelDefaults
	localEndpoint string
	resolver      *credentials.Resolver
	backends      BackendFactory
	prototype     *Orchestrator
}

// NewRouterService wires the routing pipeline. opts configure the
// orchestrator used for every run; its logger and observer are also used for
// routing events.
func NewRouterService(cfg RouterConfig, resolver *credentials.Resolver, backends BackendFactory, tests TestRunner, opts ...OrchestratorOption) *RouterService {
	thresholds := cfg.Thresholds
	if thresholds == (routing.Thresholds{}) {
		thresholds = routing.DefaultThresholds()
	}
	return &RouterService{
		classifier:    routing.NewClassifier(thresholds, cfg.Descriptions),
		models:        routing.NewEngine(cfg.Models).Models(),
		localEndpoint: cfg.LocalEndpoint,
		resolver:      resolver,
		backends:      backends,
		prototype:     NewOrchestrator(nil, tests, opts...),
	}
}

// Plan classifies the task and decides its route without calling a backend.
func (s *RouterService) Plan(ctx context.Context, req RouteRequest) (*RoutingPlan, error) {
	if strings.TrimSpace(req.Task) == "" {
		return nil, ErrEmptyTask
	}
	log := s.prototype.logger

	task := routing.NewTask(req.Task, req.Complexity)
	level := s.classifier.Classify(task)

	var warnings []string
	if req.Complexity != "" {
		if _, ok := routing.ParseComplexityLevel(req.Complexity); !ok {
			warnings = append(warnings, fmt.Sprintf("unknown complexity %q ignored; classified by length", req.Complexity))
		}
	}

	resolution := s.resolver.Resolve(ctx, req.Keys)
	warnings = append(warnings, resolution.Warnings...)

	valid, problems := credentials.Valid(resolution.Credentials)
	for _, p := range problems {
		warnings = append(warnings, p.Error())
	}

	caps := credentials.CheckValidity(resolution.Credentials, s.localEndpoint)
	if req.DryRun {
		caps = routing.CapabilitySet{Local: true, Aggregator: true, Remote: true}
		warnings = append(warnings, "dry run: every backend is simulated")
	}

	models := s.models
	if !req.DryRun {
		models.Remote = s.remoteModel(valid)
	}
	decision := routing.NewEngine(models).Decide(level, caps, routing.Forced{
		Local:  req.ForceLocal,
		Remote: req.ForceRemote,
		Model:  req.Model,
	})
	summary := routing.Summarize(decision)
	s.prototype.observer.DecisionMade(summary)

	log.Debug().
		Str("source", resolution.Source.String()).
		Str("complexity", level.String()).
		Str("approach", string(summary.Approach)).
		Str("model", summary.Primary.Model).
		Msg("routing decision")

	return &RoutingPlan{
		TaskLength:            task.Length(),
		Complexity:            level.String(),
		ComplexityDescription: s.classifier.Describe(level),
		Capabilities:          caps,
		Decision:              summary,
		CredentialSource:      resolution.Source.String(),
		CredentialPath:        resolution.Path,
		Warnings:              warnings,
		DryRun:                req.DryRun,
		task:                  task,
		decision:              decision,
		keys:                  valid,
	}, nil
}

// Run plans the task and executes the decision. The plan is returned whenever
// planning succeeded, and the result whenever execution started, so callers
// can show partial collaborative output on failure.
func (s *RouterService) Run(ctx context.Context, req RouteRequest) (*RoutingPlan, *workflow.Result, error) {
	plan, err := s.Plan(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.Execute(ctx, plan)
	return plan, res, err
}

// Execute runs a plan produced by Plan. Backends are built from the keys that
// passed validation during planning.
func (s *RouterService) Execute(ctx context.Context, plan *RoutingPlan) (*workflow.Result, error) {
	if plan == nil || plan.decision == nil {
		return nil, fmt.Errorf("%w: plan has no decision", workflow.ErrUnknownApproach)
	}
	o := *s.prototype
	o.backends = s.backends(plan.keys, plan.DryRun)
	return o.Execute(ctx, plan.task, plan.decision)
}

// remoteModel keeps the configured remote model when its provider has a
// valid key, otherwise switches to a provider that does.
func (s *RouterService) remoteModel(valid credentials.Credentials) string {
	configured := s.models.Remote
	if valid.Get(infraAI.RemoteProviderName(configured)) != "" {
		return configured
	}
	for _, p := range []credentials.Provider{credentials.ProviderGemini, credentials.ProviderQwen, credentials.ProviderAnthropic} {
		if valid.Get(p) != "" {
			return remoteFallbackModels[p]
		}
	}
	return configured
}
