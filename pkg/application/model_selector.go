package application

import (
	"regexp"
	"strings"
)

// TaskType is the coarse kind of work a task asks for.
type TaskType string

const (
	TaskFlutter    TaskType = "flutter"
	TaskJavaScript TaskType = "javascript"
	TaskPython     TaskType = "python"
	TaskJava       TaskType = "java"
	TaskPHP        TaskType = "php"
	TaskImage      TaskType = "image"
	TaskGeneral    TaskType = "general"
)

// Purpose is why a local model is being picked.
type Purpose string

const (
	PurposeLocal          Purpose = "local"
	PurposeImplementation Purpose = "implementation"
	PurposeImprovement    Purpose = "improvement"
)

var taskTypeKeywords = []struct {
	pattern *regexp.Regexp
	kind    TaskType
}{
	{regexp.MustCompile(`\b(flutter|dart|widgets?)\b`), TaskFlutter},
	{regexp.MustCompile(`\b(react|javascript|js)\b`), TaskJavaScript},
	{regexp.MustCompile(`\b(python|py)\b`), TaskPython},
	{regexp.MustCompile(`\bjava\b`), TaskJava},
	{regexp.MustCompile(`\b(php|laravel)\b`), TaskPHP},
	{regexp.MustCompile(`\b(node|nodejs|express)\b`), TaskJavaScript},
	{regexp.MustCompile(`\b(image|design|ui)\b`), TaskImage},
}

// ModelSelector picks local models by task type.
type ModelSelector struct {
	lightweight    string
	implementation map[TaskType]string
	improvement    map[TaskType]string
}

// NewModelSelector returns a selector with the stock local model table.
func NewModelSelector() *ModelSelector {
	return &ModelSelector{
		lightweight: "tinyllama:1.1b",
		implementation: map[TaskType]string{
			TaskFlutter:    "codellama:7b-instruct",
			TaskJavaScript: "smollm2:1.7b",
			TaskPython:     "codellama:7b-instruct",
			TaskJava:       "codellama:7b-instruct",
			TaskPHP:        "smollm2:1.7b",
			TaskGeneral:    "smollm2:1.7b",
		},
		improvement: map[TaskType]string{
			TaskFlutter:    "codellama:7b-instruct",
			TaskJavaScript: "codegemma:2b",
			TaskPython:     "codellama:7b-instruct",
			TaskJava:       "codellama:7b-instruct",
			TaskPHP:        "codegemma:2b",
			TaskGeneral:    "codegemma:2b",
		},
	}
}

// DetectTaskType classifies task by its first matching keyword group.
func DetectTaskType(task string) TaskType {
	lower := strings.ToLower(task)
	for _, kw := range taskTypeKeywords {
		if kw.pattern.MatchString(lower) {
			return kw.kind
		}
	}
	return TaskGeneral
}

// Select returns the local model for task and purpose. Image tasks have no
// local model with vision support, so they get the general model.
func (s *ModelSelector) Select(task string, purpose Purpose) string {
	kind := DetectTaskType(task)

	var table map[TaskType]string
	switch purpose {
	case PurposeLocal:
		return s.lightweight
	case PurposeImplementation:
		table = s.implementation
	case PurposeImprovement:
		table = s.improvement
	default:
		return s.implementation[TaskGeneral]
	}

	if m, ok := table[kind]; ok {
		return m
	}
	return table[TaskGeneral]
}
