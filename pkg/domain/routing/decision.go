package routing

import "fmt"

// Backend identifies one of the three inference backends.
type Backend string

const (
	BackendLocal      Backend = "local"
	BackendAggregator Backend = "aggregator"
	BackendRemote     Backend = "remote"
)

// Approach is the routing outcome of a Decision.
type Approach string

const (
	ApproachLocal         Approach = "local"
	ApproachAggregator    Approach = "aggregator"
	ApproachRemote        Approach = "remote"
	ApproachCollaborative Approach = "collaborative"
)

// CapabilitySet records which backends have well-formed configuration.
// It says nothing about reachability.
type CapabilitySet struct {
	Local      bool `json:"local"`
	Aggregator bool `json:"aggregator"`
	Remote     bool `json:"remote"`
}

// ModelRef pins a model to the backend that serves it.
type ModelRef struct {
	Backend Backend `json:"backend"`
	Model   string  `json:"model"`
}

func (m ModelRef) String() string {
	return fmt.Sprintf("%s:%s", m.Backend, m.Model)
}

// Decision is the single routing outcome for a task. The set of
// implementations is closed: LocalDecision, AggregatorDecision,
// RemoteDecision and CollaborativeDecision.
type Decision interface {
	Approach() Approach
	Primary() ModelRef
	Justification() string
	decision()
}

// LocalDecision runs the task once on the local model server.
type LocalDecision struct {
	Model  string
	Reason string
}

func (d LocalDecision) Approach() Approach    { return ApproachLocal }
func (d LocalDecision) Primary() ModelRef     { return ModelRef{Backend: BackendLocal, Model: d.Model} }
func (d LocalDecision) Justification() string { return d.Reason }
func (LocalDecision) decision()               {}

// AggregatorDecision runs the task once through the cloud aggregator.
type AggregatorDecision struct {
	Model  string
	Reason string
}

func (d AggregatorDecision) Approach() Approach { return ApproachAggregator }
func (d AggregatorDecision) Primary() ModelRef {
	return ModelRef{Backend: BackendAggregator, Model: d.Model}
}
func (d AggregatorDecision) Justification() string { return d.Reason }
func (AggregatorDecision) decision()               {}

// RemoteDecision runs the task once against a direct cloud model API.
type RemoteDecision struct {
	Model  string
	Reason string
}

func (d RemoteDecision) Approach() Approach    { return ApproachRemote }
func (d RemoteDecision) Primary() ModelRef     { return ModelRef{Backend: BackendRemote, Model: d.Model} }
func (d RemoteDecision) Justification() string { return d.Reason }
func (RemoteDecision) decision()               {}

// CollaborativeDecision drives the multi-phase pipeline. The planner plans
// and reviews; the executor implements and improves. Both are required and
// always name distinct backends.
type CollaborativeDecision struct {
	Planner  ModelRef
	Executor ModelRef
	Reason   string
}

func (d CollaborativeDecision) Approach() Approach    { return ApproachCollaborative }
func (d CollaborativeDecision) Primary() ModelRef     { return d.Planner }
func (d CollaborativeDecision) Secondary() ModelRef   { return d.Executor }
func (d CollaborativeDecision) Justification() string { return d.Reason }
func (CollaborativeDecision) decision()               {}

// Summary is the flat, serializable view of a Decision used by the CLI,
// HTTP and MCP surfaces.
type Summary struct {
	Approach      Approach  `json:"approach"`
	Primary       ModelRef  `json:"primary"`
	Secondary     *ModelRef `json:"secondary,omitempty"`
	Justification string    `json:"justification"`
}

// Summarize flattens a Decision.
func Summarize(d Decision) Summary {
	s := Summary{
		Approach:      d.Approach(),
		Primary:       d.Primary(),
		Justification: d.Justification(),
	}
	if c, ok := d.(CollaborativeDecision); ok {
		secondary := c.Secondary()
		s.Secondary = &secondary
	}
	return s
}
