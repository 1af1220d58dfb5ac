package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/hybridai/pkg/domain/ai"
	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
	"github.com/felixgeelhaar/hybridai/pkg/progress"
	"github.com/felixgeelhaar/hybridai/pkg/testrunner"
)

// testRunnerModel is recorded as the model of the two test phases.
const testRunnerModel = "test-runner"

// Backends looks up the client serving a backend.
type Backends interface {
	For(b routing.Backend) (ai.BackendClient, bool)
}

// TestRunner checks generated code. Only Success drives control flow; the
// whole report is passed on to later phases.
type TestRunner interface {
	RunTests(ctx context.Context, code, task string) (testrunner.TestReport, error)
}

// Observer receives routing and execution events, typically for metrics.
type Observer interface {
	DecisionMade(s routing.Summary)
	PhaseFinished(phase workflow.Phase, status workflow.Status, elapsed time.Duration)
	RunFinished(approach routing.Approach, status workflow.Status, elapsed time.Duration)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) DecisionMade(routing.Summary)                                 {}
func (NopObserver) PhaseFinished(workflow.Phase, workflow.Status, time.Duration) {}
func (NopObserver) RunFinished(routing.Approach, workflow.Status, time.Duration) {}

// Observers fans every event out to each member in order.
type Observers []Observer

func (obs Observers) DecisionMade(s routing.Summary) {
	for _, o := range obs {
		o.DecisionMade(s)
	}
}

func (obs Observers) PhaseFinished(p workflow.Phase, st workflow.Status, d time.Duration) {
	for _, o := range obs {
		o.PhaseFinished(p, st, d)
	}
}

func (obs Observers) RunFinished(a routing.Approach, st workflow.Status, d time.Duration) {
	for _, o := range obs {
		o.RunFinished(a, st, d)
	}
}

// Orchestrator executes a Decision: one backend call for single-model
// approaches, or the six-phase pipeline for collaborative ones.
type Orchestrator struct {
	backends  Backends
	tests     TestRunner
	announcer *progress.Announcer
	selector  *ModelSelector
	observer  Observer
	logger    zerolog.Logger
	newRunID  func() string
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithAnnouncer shows progress messages while backends work.
func WithAnnouncer(a *progress.Announcer) OrchestratorOption {
	return func(o *Orchestrator) {
		if a != nil {
			o.announcer = a
		}
	}
}

// WithModelSelector picks local executor models by task type.
func WithModelSelector(s *ModelSelector) OrchestratorOption {
	return func(o *Orchestrator) { o.selector = s }
}

// WithObserver reports phase and run outcomes.
func WithObserver(obs Observer) OrchestratorOption {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(l zerolog.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = l }
}

// WithRunIDs replaces the run ID generator.
func WithRunIDs(fn func() string) OrchestratorOption {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newRunID = fn
		}
	}
}

func NewOrchestrator(backends Backends, tests TestRunner, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		backends:  backends,
		tests:     tests,
		announcer: progress.Disabled(),
		observer:  NopObserver{},
		logger:    zerolog.Nop(),
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs decision for task. On failure the returned Result is still
// populated: single calls carry the error, collaborative runs keep every
// phase completed before the failure.
func (o *Orchestrator) Execute(ctx context.Context, task routing.Task, decision routing.Decision) (*workflow.Result, error) {
	runID := o.newRunID()
	start := time.Now()

	var (
		res *workflow.Result
		err error
	)
	switch d := decision.(type) {
	case routing.LocalDecision:
		res, err = o.single(ctx, runID, task, d.Primary(), "Processing with local model")
	case routing.AggregatorDecision:
		res, err = o.single(ctx, runID, task, d.Primary(), "Processing with aggregator model")
	case routing.RemoteDecision:
		res, err = o.single(ctx, runID, task, d.Primary(), "Processing with remote model")
	case routing.CollaborativeDecision:
		res, err = o.collaborate(ctx, runID, task, d)
	default:
		return nil, fmt.Errorf("%w: %T", workflow.ErrUnknownApproach, decision)
	}

	o.observer.RunFinished(decision.Approach(), res.Status, time.Since(start))
	return res, err
}

func (o *Orchestrator) single(ctx context.Context, runID string, task routing.Task, ref routing.ModelRef, title string) (*workflow.Result, error) {
	approach := routing.Approach(ref.Backend)
	log := o.logger.With().
		Str("run_id", runID).
		Str("approach", string(approach)).
		Str("backend", string(ref.Backend)).
		Str("model", ref.Model).
		Logger()

	res := &workflow.Result{RunID: runID, Approach: approach, Model: ref.Model}

	start := time.Now()
	out, err := o.call(ctx, ref, task.Text(), "general", title)
	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("backend call failed")
		res.Status = workflow.StatusFailed
		res.Err = &workflow.ApproachError{Approach: approach, Model: ref.Model, Err: err}
		return res, res.Err
	}

	log.Info().Dur("duration", time.Since(start)).Msg("backend call complete")
	res.Status = workflow.StatusComplete
	res.Output = out
	return res, nil
}

// call dispatches one prompt with a progress task running for its duration.
func (o *Orchestrator) call(ctx context.Context, ref routing.ModelRef, prompt, mood, title string) (string, error) {
	client, ok := o.backends.For(ref.Backend)
	if !ok {
		return "", ai.NewBackendError(ai.KindBackendUnavailable, string(ref.Backend), ref.Model,
			errors.New("backend is not configured"))
	}

	h := o.announcer.Start(mood, title)
	defer h.Stop()
	return client.ExecuteTask(ctx, prompt, ref.Model)
}

func (o *Orchestrator) collaborate(ctx context.Context, runID string, task routing.Task, d routing.CollaborativeDecision) (*workflow.Result, error) {
	log := o.logger.With().
		Str("run_id", runID).
		Str("approach", string(routing.ApproachCollaborative)).
		Logger()

	res := &workflow.Result{
		RunID:    runID,
		Approach: routing.ApproachCollaborative,
		Model:    d.Planner.Model,
	}

	machine, err := workflow.NewPipelineMachine(runID)
	if err != nil {
		res.Status = workflow.StatusFailed
		res.Err = err
		return res, err
	}

	for {
		if err := machine.Advance(); err != nil {
			res.Status = workflow.StatusFailed
			res.Err = err
			return res, err
		}
		phase, ok := machine.Phase()
		if !ok {
			break
		}

		plog := log.With().Str("phase", phase.String()).Logger()
		start := time.Now()
		output, model, err := o.runPhase(ctx, phase, task.Text(), d, res.Phases)
		elapsed := time.Since(start)

		if err != nil {
			_ = machine.Fail()
			plog.Error().Err(err).Dur("duration", elapsed).Msg("phase failed")
			o.observer.PhaseFinished(phase, workflow.StatusFailed, elapsed)

			failed := phase
			res.Status = workflow.StatusFailed
			res.FailedPhase = &failed
			res.Err = &workflow.PipelineError{Phase: phase, Completed: len(res.Phases), Err: err}
			return res, res.Err
		}

		plog.Info().Str("model", model).Dur("duration", elapsed).Msg("phase complete")
		o.observer.PhaseFinished(phase, workflow.StatusComplete, elapsed)
		res.Phases = append(res.Phases, workflow.PhaseOutput{
			Phase:    phase,
			Model:    model,
			Output:   output,
			Duration: elapsed,
		})
	}

	res.Status = workflow.StatusComplete
	return res, nil
}

// runPhase executes one phase and returns its output and the model that
// produced it.
func (o *Orchestrator) runPhase(ctx context.Context, phase workflow.Phase, task string, d routing.CollaborativeDecision, prior []workflow.PhaseOutput) (string, string, error) {
	title := fmt.Sprintf("Phase %d: %s", phase.Number(), phase.Title())

	switch phase.Role() {
	case workflow.RoleTester:
		code := latestCode(phase, prior)
		out, err := o.runTests(ctx, code, task, phase.Mood(), title)
		return out, testRunnerModel, err
	case workflow.RolePlanner:
		prompt := BuildPhasePrompt(phase, task, prior)
		out, err := o.call(ctx, d.Planner, prompt, phase.Mood(), title)
		return out, d.Planner.Model, err
	default:
		ref := o.executorFor(phase, task, d.Executor)
		prompt := BuildPhasePrompt(phase, task, prior)
		out, err := o.call(ctx, ref, prompt, phase.Mood(), title)
		return out, ref.Model, err
	}
}

func (o *Orchestrator) executorFor(phase workflow.Phase, task string, ref routing.ModelRef) routing.ModelRef {
	if o.selector == nil || ref.Backend != routing.BackendLocal {
		return ref
	}
	purpose := PurposeImplementation
	if phase == workflow.PhaseImprovement {
		purpose = PurposeImprovement
	}
	ref.Model = o.selector.Select(task, purpose)
	return ref
}

func (o *Orchestrator) runTests(ctx context.Context, code, task, mood, title string) (string, error) {
	if o.tests == nil {
		return "", fmt.Errorf("%w: no test runner configured", workflow.ErrTestsFailed)
	}

	h := o.announcer.Start(mood, title)
	defer h.Stop()

	report, err := o.tests.RunTests(ctx, code, task)
	if err != nil {
		return "", fmt.Errorf("%w: %v", workflow.ErrTestsFailed, err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode report: %v", workflow.ErrTestsFailed, err)
	}
	return string(data), nil
}

// latestCode returns the implementation the test phase should check: phase 2
// for the first test run, phase 5 for the final validation.
func latestCode(phase workflow.Phase, prior []workflow.PhaseOutput) string {
	source := workflow.PhaseImplementation
	if phase == workflow.PhaseValidation {
		source = workflow.PhaseImprovement
	}
	for _, p := range prior {
		if p.Phase == source {
			return p.Output
		}
	}
	return ""
}
