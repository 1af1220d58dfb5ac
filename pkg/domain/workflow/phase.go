// Package workflow models the six-phase collaborative pipeline: its phases,
// their order and the result of a run.
package workflow

import "fmt"

// Phase is one step of the collaborative pipeline.
type Phase int

const (
	PhaseArchitecture Phase = iota
	PhaseImplementation
	PhaseTest
	PhaseReview
	PhaseImprovement
	PhaseValidation
)

// Phases returns the pipeline phases in execution order.
func Phases() []Phase {
	return []Phase{
		PhaseArchitecture,
		PhaseImplementation,
		PhaseTest,
		PhaseReview,
		PhaseImprovement,
		PhaseValidation,
	}
}

// Role says who performs a phase.
type Role int

const (
	// RolePlanner is the primary (remote) model.
	RolePlanner Role = iota
	// RoleExecutor is the secondary (aggregator or local) model.
	RoleExecutor
	// RoleTester is the test runner; no model is called.
	RoleTester
)

func (r Role) String() string {
	switch r {
	case RolePlanner:
		return "planner"
	case RoleExecutor:
		return "executor"
	case RoleTester:
		return "tester"
	default:
		return "unknown"
	}
}

// String returns the machine name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseArchitecture:
		return "architecture"
	case PhaseImplementation:
		return "implementation"
	case PhaseTest:
		return "test"
	case PhaseReview:
		return "review"
	case PhaseImprovement:
		return "improvement"
	case PhaseValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// ParsePhase maps a machine name back to its Phase.
func ParsePhase(s string) (Phase, bool) {
	for _, p := range Phases() {
		if p.String() == s {
			return p, true
		}
	}
	return 0, false
}

// MarshalText encodes the phase by its machine name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a machine name produced by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, ok := ParsePhase(string(text))
	if !ok {
		return fmt.Errorf("unknown phase %q", text)
	}
	*p = parsed
	return nil
}

// Number is the 1-based position of the phase.
func (p Phase) Number() int {
	return int(p) + 1
}

// Title is the heading shown while the phase runs.
func (p Phase) Title() string {
	switch p {
	case PhaseArchitecture:
		return "Architecture & Specifications"
	case PhaseImplementation:
		return "Code Implementation"
	case PhaseTest:
		return "Automated Testing"
	case PhaseReview:
		return "Code Review"
	case PhaseImprovement:
		return "Implementation Improvements"
	case PhaseValidation:
		return "Final Validation"
	default:
		return "Unknown Phase"
	}
}

// ReportLabel is the fixed section label used in the final report.
func (p Phase) ReportLabel() string {
	switch p {
	case PhaseArchitecture:
		return "Senior Developer Architecture & Specifications"
	case PhaseImplementation:
		return "Professional Implementation"
	case PhaseTest:
		return "Initial Test Results"
	case PhaseReview:
		return "Senior Developer Code Review"
	case PhaseImprovement:
		return "Improved Implementation"
	case PhaseValidation:
		return "Final Test Results"
	default:
		return "Unknown Phase"
	}
}

// Role returns who performs the phase.
func (p Phase) Role() Role {
	switch p {
	case PhaseArchitecture, PhaseReview:
		return RolePlanner
	case PhaseImplementation, PhaseImprovement:
		return RoleExecutor
	default:
		return RoleTester
	}
}

// Mood is the progress-message context for the phase.
func (p Phase) Mood() string {
	switch p {
	case PhaseArchitecture:
		return "planning"
	case PhaseImplementation:
		return "implementation"
	case PhaseTest:
		return "testing"
	case PhaseReview:
		return "review"
	case PhaseImprovement:
		return "improvement"
	case PhaseValidation:
		return "validation"
	default:
		return "general"
	}
}
