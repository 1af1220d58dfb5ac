package application_test

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/hybridai/pkg/domain/ai"
	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
	"github.com/felixgeelhaar/hybridai/pkg/testrunner"
)

type fakeBackends map[routing.Backend]ai.BackendClient

func (f fakeBackends) For(b routing.Backend) (ai.BackendClient, bool) {
	c, ok := f[b]
	return c, ok
}

type backendCall struct {
	Prompt string
	Model  string
}

// ScriptedBackend returns Replies in order; an entry in Errors at the same
// index makes that call fail instead.
type ScriptedBackend struct {
	Replies []string
	Errors  map[int]error

	mu    sync.Mutex
	Calls []backendCall
}

func (b *ScriptedBackend) ExecuteTask(_ context.Context, prompt, model string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.Calls)
	b.Calls = append(b.Calls, backendCall{Prompt: prompt, Model: model})
	if err, ok := b.Errors[n]; ok {
		return "", err
	}
	if n < len(b.Replies) {
		return b.Replies[n], nil
	}
	return "reply", nil
}

func (b *ScriptedBackend) CallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Calls)
}

type FakeRunner struct {
	Report testrunner.TestReport
	Err    error

	mu    sync.Mutex
	Codes []string
}

func (r *FakeRunner) RunTests(_ context.Context, code, _ string) (testrunner.TestReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Codes = append(r.Codes, code)
	return r.Report, r.Err
}

type RecordingObserver struct {
	mu        sync.Mutex
	Decisions []routing.Summary
	Phases    map[workflow.Phase]workflow.Status
	Runs      []workflow.Status
}

func (o *RecordingObserver) DecisionMade(s routing.Summary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Decisions = append(o.Decisions, s)
}

func (o *RecordingObserver) PhaseFinished(p workflow.Phase, s workflow.Status, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Phases == nil {
		o.Phases = map[workflow.Phase]workflow.Status{}
	}
	o.Phases[p] = s
}

func (o *RecordingObserver) RunFinished(_ routing.Approach, s workflow.Status, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Runs = append(o.Runs, s)
}
