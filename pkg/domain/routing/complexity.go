// Package routing holds the pure routing domain: task complexity
// classification, backend capabilities and the decision engine.
package routing

import (
	"strings"
	"unicode/utf8"
)

// ComplexityLevel is the estimated difficulty of a task.
// Levels are totally ordered: LevelLow < LevelMedium < LevelHigh.
type ComplexityLevel int

const (
	LevelLow ComplexityLevel = iota
	LevelMedium
	LevelHigh
)

// String returns the canonical name of the level.
func (l ComplexityLevel) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Valid reports whether l is one of the known levels.
func (l ComplexityLevel) Valid() bool {
	return l >= LevelLow && l <= LevelHigh
}

// ParseComplexityLevel maps a level name or one of its aliases to a level.
// "auto" and "" are not levels and return false.
func ParseComplexityLevel(s string) (ComplexityLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "independent", "simple":
		return LevelLow, true
	case "medium", "guided", "standard":
		return LevelMedium, true
	case "high", "direct", "complex":
		return LevelHigh, true
	default:
		return LevelLow, false
	}
}

// Task is the immutable unit of work being routed.
type Task struct {
	text     string
	override string
}

// NewTask builds a task. override is the caller's explicit complexity level;
// pass "" or "auto" to let the classifier decide.
func NewTask(text, override string) Task {
	return Task{text: text, override: override}
}

// Text returns the task text.
func (t Task) Text() string { return t.text }

// Override returns the raw override supplied by the caller.
func (t Task) Override() string { return t.override }

// Length is the task length in characters.
func (t Task) Length() int {
	return utf8.RuneCountInString(t.text)
}

// Thresholds are the inclusive upper bounds for the low and medium levels.
type Thresholds struct {
	LowMax    int
	MediumMax int
}

// DefaultThresholds returns the stock 50/200 character bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{LowMax: 50, MediumMax: 200}
}

// Classifier assigns a ComplexityLevel to a task.
type Classifier struct {
	thresholds   Thresholds
	descriptions map[ComplexityLevel]string
}

// NewClassifier creates a classifier. A MediumMax below LowMax is raised to
// LowMax so the medium band is empty rather than inverted.
func NewClassifier(t Thresholds, descriptions map[ComplexityLevel]string) *Classifier {
	if t.MediumMax < t.LowMax {
		t.MediumMax = t.LowMax
	}
	desc := map[ComplexityLevel]string{
		LevelLow:    "Simple queries and code snippets",
		LevelMedium: "Moderate tasks requiring some reasoning",
		LevelHigh:   "Complex tasks requiring deep analysis",
	}
	for level, d := range descriptions {
		if d != "" {
			desc[level] = d
		}
	}
	return &Classifier{thresholds: t, descriptions: desc}
}

// Thresholds returns the configured bounds.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify returns the task's level. A recognized override always wins;
// otherwise the level follows the task length.
func (c *Classifier) Classify(task Task) ComplexityLevel {
	if level, ok := ParseComplexityLevel(task.Override()); ok {
		return level
	}

	n := task.Length()
	switch {
	case n <= c.thresholds.LowMax:
		return LevelLow
	case n <= c.thresholds.MediumMax:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// Describe returns the human description of a level.
func (c *Classifier) Describe(level ComplexityLevel) string {
	if d, ok := c.descriptions[level]; ok {
		return d
	}
	return "Unknown complexity"
}
