package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
)

// Workflow errors.
var (
	// ErrUnknownApproach indicates a Decision variant the orchestrator cannot run.
	ErrUnknownApproach = errors.New("unknown routing approach")
	// ErrPipelineFailed is matched by every *PipelineError.
	ErrPipelineFailed = errors.New("collaborative pipeline failed")
	// ErrTestsFailed indicates the test runner could not produce a report.
	ErrTestsFailed = errors.New("test runner failed")
)

// Status is the terminal state of a run.
type Status string

const (
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// PhaseOutput is the recorded output of one completed phase.
type PhaseOutput struct {
	Phase    Phase         `json:"phase"`
	Model    string        `json:"model"`
	Output   string        `json:"output"`
	Duration time.Duration `json:"-"`
}

type phaseOutputJSON struct {
	Phase      Phase  `json:"phase"`
	Model      string `json:"model"`
	Output     string `json:"output"`
	DurationMS int64  `json:"duration_ms"`
}

// MarshalJSON encodes the phase by name and the duration in milliseconds.
func (po PhaseOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(phaseOutputJSON{
		Phase:      po.Phase,
		Model:      po.Model,
		Output:     po.Output,
		DurationMS: po.Duration.Milliseconds(),
	})
}

func (po *PhaseOutput) UnmarshalJSON(data []byte) error {
	var w phaseOutputJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*po = PhaseOutput{
		Phase:    w.Phase,
		Model:    w.Model,
		Output:   w.Output,
		Duration: time.Duration(w.DurationMS) * time.Millisecond,
	}
	return nil
}

// Result is the outcome of executing a Decision.
type Result struct {
	RunID    string           `json:"run_id"`
	Approach routing.Approach `json:"approach"`
	Model    string           `json:"model"`
	Status   Status           `json:"status"`

	// Output is set for single-call approaches.
	Output string `json:"output,omitempty"`

	// Phases holds completed phases in order for collaborative runs.
	Phases      []PhaseOutput `json:"phases,omitempty"`
	FailedPhase *Phase        `json:"failed_phase,omitempty"`
	Err         error         `json:"-"`
}

// Completed reports whether the run finished without error.
func (r *Result) Completed() bool {
	return r.Status == StatusComplete
}

// OutputOf returns the recorded output of phase p.
func (r *Result) OutputOf(p Phase) (PhaseOutput, bool) {
	for _, po := range r.Phases {
		if po.Phase == p {
			return po, true
		}
	}
	return PhaseOutput{}, false
}

// Report is the text handed back to the caller. Single-call runs return the
// backend output. Collaborative runs concatenate phase outputs under their
// labels in phase order; a failed run yields the completed sections only.
func (r *Result) Report() string {
	if r.Approach != routing.ApproachCollaborative {
		return r.Output
	}
	sections := make([]string, 0, len(r.Phases))
	for _, po := range r.Phases {
		sections = append(sections, po.Phase.ReportLabel()+":\n"+po.Output)
	}
	return strings.Join(sections, "\n\n")
}

// PipelineError reports where a collaborative run stopped.
type PipelineError struct {
	Phase     Phase
	Completed int
	Err       error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("phase %d (%s) failed after %d completed phase(s): %v", e.Phase.Number(), e.Phase, e.Completed, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to work with PipelineError.
func (e *PipelineError) Is(target error) bool {
	return target == ErrPipelineFailed
}

// ApproachError wraps a failed single-call execution with its approach.
type ApproachError struct {
	Approach routing.Approach
	Model    string
	Err      error
}

func (e *ApproachError) Error() string {
	return fmt.Sprintf("%s execution with %s failed: %v", e.Approach, e.Model, e.Err)
}

func (e *ApproachError) Unwrap() error {
	return e.Err
}
