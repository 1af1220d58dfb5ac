package workflow

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Pipeline states. Phase states use Phase.String() so the two stay aligned.
const (
	StatePending  = "pending"
	StateComplete = "complete"
	StateFailed   = "failed"
)

const (
	eventAdvance = "advance"
	eventFail    = "fail"
)

// PipelineContext carries the run the machine belongs to.
type PipelineContext struct {
	RunID string
}

// PipelineMachine enforces the phase order: each phase can only be entered
// from its predecessor, and a failure is terminal.
type PipelineMachine struct {
	interpreter *statekit.Interpreter[PipelineContext]
}

// NewPipelineMachine builds a machine in the pending state.
func NewPipelineMachine(runID string) (*PipelineMachine, error) {
	builder := statekit.NewMachine[PipelineContext]("collaborative-pipeline").
		WithInitial(statekit.StateID(StatePending)).
		WithContext(PipelineContext{RunID: runID})

	phases := Phases()

	builder.State(StatePending).
		On(eventAdvance).Target(statekit.StateID(phases[0].String())).
		Done()

	for i, p := range phases {
		next := StateComplete
		if i+1 < len(phases) {
			next = phases[i+1].String()
		}
		builder.State(statekit.StateID(p.String())).
			On(eventAdvance).Target(statekit.StateID(next)).
			On(eventFail).Target(StateFailed).
			Done()
	}

	builder.State(StateComplete).Done()
	builder.State(StateFailed).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &PipelineMachine{interpreter: interpreter}, nil
}

// Current returns the current state name.
func (m *PipelineMachine) Current() string {
	return string(m.interpreter.State().Value)
}

// Phase returns the running phase, if the machine is in one.
func (m *PipelineMachine) Phase() (Phase, bool) {
	cur := m.Current()
	for _, p := range Phases() {
		if p.String() == cur {
			return p, true
		}
	}
	return 0, false
}

// Advance completes the current phase (or starts the first one) and moves on.
func (m *PipelineMachine) Advance() error {
	return m.send(eventAdvance)
}

// Fail marks the current phase as failed.
func (m *PipelineMachine) Fail() error {
	return m.send(eventFail)
}

// Done reports whether the machine reached a terminal state.
func (m *PipelineMachine) Done() bool {
	cur := m.Current()
	return cur == StateComplete || cur == StateFailed
}

func (m *PipelineMachine) send(event string) error {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if m.Current() == before {
		return fmt.Errorf("the event '%s' is not allowed while the pipeline is in the '%s' state", event, before)
	}
	return nil
}
