package application

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
)

var phaseInstructions = map[workflow.Phase]string{
	workflow.PhaseArchitecture: `You are a senior software architect. Produce the architecture and specification for the task below.
Cover:
- Components and their responsibilities
- Data structures and interfaces
- Error handling and edge cases
- A step-by-step implementation plan a developer can follow directly
Do not write the full implementation.`,

	workflow.PhaseImplementation: `You are a professional developer. Implement the task below exactly as the architecture specifies.
Return complete, runnable code in fenced code blocks tagged with the language.
Keep explanations short.`,

	workflow.PhaseReview: `You are a senior developer reviewing a colleague's work. Review the implementation below against the architecture and the test results.
List concrete problems (bugs, missing requirements, failing checks, unclear code) and the change that fixes each one.`,

	workflow.PhaseImprovement: `You are a professional developer. Rewrite the implementation below so that it addresses every point in the code review and passes the tests.
Return the complete improved code in fenced code blocks tagged with the language.`,
}

// BuildPhasePrompt renders the prompt for a model-driven phase. It embeds the
// original task and the verbatim output of every earlier phase, in order.
func BuildPhasePrompt(phase workflow.Phase, task string, prior []workflow.PhaseOutput) string {
	var b strings.Builder
	b.WriteString(phaseInstructions[phase])
	b.WriteString("\n\nOriginal task:\n")
	b.WriteString(task)

	for _, p := range prior {
		fmt.Fprintf(&b, "\n\n%s (phase %d):\n%s", p.Phase.ReportLabel(), p.Phase.Number(), p.Output)
	}
	return b.String()
}
