package workflow_test

import (
	"testing"

	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
)

func TestPipelineMachine_RunsPhasesInOrder(t *testing.T) {
	m, err := workflow.NewPipelineMachine("run-1")
	if err != nil {
		t.Fatalf("NewPipelineMachine: %v", err)
	}
	if m.Current() != workflow.StatePending {
		t.Fatalf("expected pending, got %s", m.Current())
	}
	if _, ok := m.Phase(); ok {
		t.Error("pending must not report a phase")
	}

	var seen []workflow.Phase
	for {
		if err := m.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
		p, ok := m.Phase()
		if !ok {
			break
		}
		seen = append(seen, p)
	}

	want := workflow.Phases()
	if len(seen) != len(want) {
		t.Fatalf("saw %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("phase %d = %s, want %s", i, seen[i], want[i])
		}
	}
	if m.Current() != workflow.StateComplete || !m.Done() {
		t.Errorf("expected complete, got %s", m.Current())
	}
	if err := m.Advance(); err == nil {
		t.Error("advance after completion must fail")
	}
}

func TestPipelineMachine_FailIsTerminal(t *testing.T) {
	m, err := workflow.NewPipelineMachine("run-2")
	if err != nil {
		t.Fatalf("NewPipelineMachine: %v", err)
	}
	if err := m.Fail(); err == nil {
		t.Error("fail before the first phase must be rejected")
	}

	for i := 0; i < 3; i++ {
		if err := m.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	if p, _ := m.Phase(); p != workflow.PhaseTest {
		t.Fatalf("expected test phase, got %s", p)
	}

	if err := m.Fail(); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if m.Current() != workflow.StateFailed || !m.Done() {
		t.Errorf("expected failed, got %s", m.Current())
	}
	if err := m.Advance(); err == nil {
		t.Error("advance after failure must be rejected")
	}
}
