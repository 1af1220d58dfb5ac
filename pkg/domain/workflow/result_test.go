package workflow_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
)

func TestPhases_RolesAndOrder(t *testing.T) {
	roles := map[workflow.Phase]workflow.Role{
		workflow.PhaseArchitecture:   workflow.RolePlanner,
		workflow.PhaseImplementation: workflow.RoleExecutor,
		workflow.PhaseTest:           workflow.RoleTester,
		workflow.PhaseReview:         workflow.RolePlanner,
		workflow.PhaseImprovement:    workflow.RoleExecutor,
		workflow.PhaseValidation:     workflow.RoleTester,
	}
	for i, p := range workflow.Phases() {
		if p.Number() != i+1 {
			t.Errorf("%s number = %d, want %d", p, p.Number(), i+1)
		}
		if p.Role() != roles[p] {
			t.Errorf("%s role = %s, want %s", p, p.Role(), roles[p])
		}
		if p.ReportLabel() == "Unknown Phase" || p.Title() == "Unknown Phase" {
			t.Errorf("%s has no label", p)
		}
	}
}

func TestResult_ReportCollaborative(t *testing.T) {
	r := &workflow.Result{Approach: routing.ApproachCollaborative, Status: workflow.StatusComplete}
	for _, p := range workflow.Phases() {
		r.Phases = append(r.Phases, workflow.PhaseOutput{Phase: p, Output: "out-" + p.String()})
	}

	report := r.Report()
	last := -1
	for _, p := range workflow.Phases() {
		idx := strings.Index(report, p.ReportLabel()+":\nout-"+p.String())
		if idx < 0 {
			t.Fatalf("report missing section for %s:\n%s", p, report)
		}
		if idx < last {
			t.Errorf("section %s out of order", p)
		}
		last = idx
	}
	if report != r.Report() {
		t.Error("report must be deterministic")
	}
}

func TestResult_ReportSingleCall(t *testing.T) {
	r := &workflow.Result{Approach: routing.ApproachLocal, Output: "hello", Status: workflow.StatusComplete}
	if r.Report() != "hello" {
		t.Errorf("got %q", r.Report())
	}
	if !r.Completed() {
		t.Error("expected completed")
	}
}

func TestPipelineError(t *testing.T) {
	cause := errors.New("rate limited")
	err := &workflow.PipelineError{Phase: workflow.PhaseTest, Completed: 2, Err: cause}

	if !errors.Is(err, workflow.ErrPipelineFailed) {
		t.Error("expected ErrPipelineFailed")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause in chain")
	}
	if !strings.Contains(err.Error(), "phase 3 (test)") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestApproachError(t *testing.T) {
	cause := errors.New("boom")
	err := &workflow.ApproachError{Approach: routing.ApproachRemote, Model: "gemini-pro", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected cause in chain")
	}
	if !strings.Contains(err.Error(), "remote") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestPhaseOutput_JSON(t *testing.T) {
	po := workflow.PhaseOutput{
		Phase:    workflow.PhaseReview,
		Model:    "gemini-pro",
		Output:   "looks fine",
		Duration: 1500 * time.Millisecond,
	}
	data, err := json.Marshal(po)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"phase":"review"`, `"duration_ms":1500`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("encoded %s missing %s", data, want)
		}
	}

	var back workflow.PhaseOutput
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != po {
		t.Errorf("decoded %+v, want %+v", back, po)
	}

	var p workflow.Phase
	if err := json.Unmarshal([]byte(`"warmup"`), &p); err == nil {
		t.Error("expected error for unknown phase name")
	}
}
