package application_test

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/hybridai/pkg/application"
	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
)

func TestDetectTaskType(t *testing.T) {
	tests := map[string]application.TaskType{
		"Build a Flutter login screen":     application.TaskFlutter,
		"custom widget with animation":     application.TaskFlutter,
		"React hook for pagination":        application.TaskJavaScript,
		"an express middleware":            application.TaskJavaScript,
		"python script to rename files":    application.TaskPython,
		"Spring service in Java":           application.TaskJava,
		"laravel controller":               application.TaskPHP,
		"design a landing page UI":         application.TaskImage,
		"explain recursion":                application.TaskGeneral,
		"happy path for the checkout flow": application.TaskGeneral,
	}
	for task, want := range tests {
		if got := application.DetectTaskType(task); got != want {
			t.Errorf("DetectTaskType(%q) = %s, want %s", task, got, want)
		}
	}
}

func TestModelSelector_Select(t *testing.T) {
	s := application.NewModelSelector()
	tests := []struct {
		task    string
		purpose application.Purpose
		want    string
	}{
		{"python parser", application.PurposeImplementation, "codellama:7b-instruct"},
		{"python parser", application.PurposeImprovement, "codellama:7b-instruct"},
		{"react form", application.PurposeImplementation, "smollm2:1.7b"},
		{"react form", application.PurposeImprovement, "codegemma:2b"},
		{"php upload", application.PurposeImprovement, "codegemma:2b"},
		{"ui mockup", application.PurposeImplementation, "smollm2:1.7b"},
		{"anything", application.PurposeLocal, "tinyllama:1.1b"},
		{"anything", application.Purpose("other"), "smollm2:1.7b"},
	}
	for _, tt := range tests {
		if got := s.Select(tt.task, tt.purpose); got != tt.want {
			t.Errorf("Select(%q, %s) = %s, want %s", tt.task, tt.purpose, got, tt.want)
		}
	}
}

func TestBuildPhasePrompt(t *testing.T) {
	prior := []workflow.PhaseOutput{
		{Phase: workflow.PhaseArchitecture, Output: "the plan"},
		{Phase: workflow.PhaseImplementation, Output: "the code"},
	}
	prompt := application.BuildPhasePrompt(workflow.PhaseReview, "sort a list", prior)

	for _, want := range []string{"sort a list", "the plan", "the code", workflow.PhaseArchitecture.ReportLabel()} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Index(prompt, "the plan") > strings.Index(prompt, "the code") {
		t.Error("earlier outputs must appear in phase order")
	}

	first := application.BuildPhasePrompt(workflow.PhaseArchitecture, "sort a list", nil)
	if !strings.Contains(first, "sort a list") || strings.Contains(first, "phase 1") {
		t.Errorf("unexpected first prompt:\n%s", first)
	}
}
