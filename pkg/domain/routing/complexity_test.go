package routing_test

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
)

func TestClassify_Boundaries(t *testing.T) {
	c := routing.NewClassifier(routing.Thresholds{LowMax: 50, MediumMax: 200}, nil)

	tests := []struct {
		name   string
		length int
		want   routing.ComplexityLevel
	}{
		{"empty", 0, routing.LevelLow},
		{"short", 40, routing.LevelLow},
		{"at low bound", 50, routing.LevelLow},
		{"just above low", 51, routing.LevelMedium},
		{"middle", 150, routing.LevelMedium},
		{"at medium bound", 200, routing.LevelMedium},
		{"just above medium", 201, routing.LevelHigh},
		{"long", 500, routing.LevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := routing.NewTask(strings.Repeat("x", tt.length), "")
			if got := c.Classify(task); got != tt.want {
				t.Errorf("Classify(len=%d) = %s, want %s", tt.length, got, tt.want)
			}
		})
	}
}

func TestClassify_CountsCharactersNotBytes(t *testing.T) {
	c := routing.NewClassifier(routing.Thresholds{LowMax: 5, MediumMax: 10}, nil)
	// five runes, fifteen bytes
	task := routing.NewTask("日本語です", "")
	if task.Length() != 5 {
		t.Fatalf("expected length 5, got %d", task.Length())
	}
	if got := c.Classify(task); got != routing.LevelLow {
		t.Errorf("expected low, got %s", got)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	c := routing.NewClassifier(routing.DefaultThresholds(), nil)
	prev := routing.LevelLow
	for n := 0; n <= 400; n++ {
		got := c.Classify(routing.NewTask(strings.Repeat("a", n), "auto"))
		if got < prev {
			t.Fatalf("level decreased at length %d: %s after %s", n, got, prev)
		}
		prev = got
	}
}

func TestClassify_OverrideDominates(t *testing.T) {
	c := routing.NewClassifier(routing.DefaultThresholds(), nil)
	tasks := []string{"", "fix typo", strings.Repeat("z", 1000)}
	overrides := map[string]routing.ComplexityLevel{
		"low":         routing.LevelLow,
		"medium":      routing.LevelMedium,
		"high":        routing.LevelHigh,
		"independent": routing.LevelLow,
		"guided":      routing.LevelMedium,
		"DIRECT":      routing.LevelHigh,
	}

	for _, text := range tasks {
		for o, want := range overrides {
			if got := c.Classify(routing.NewTask(text, o)); got != want {
				t.Errorf("Classify(len=%d, %q) = %s, want %s", len(text), o, got, want)
			}
		}
	}
}

func TestClassify_UnknownOverrideIgnored(t *testing.T) {
	c := routing.NewClassifier(routing.DefaultThresholds(), nil)
	got := c.Classify(routing.NewTask(strings.Repeat("q", 500), "extreme"))
	if got != routing.LevelHigh {
		t.Errorf("expected length rule to apply, got %s", got)
	}
}

func TestNewClassifier_InvertedThresholds(t *testing.T) {
	c := routing.NewClassifier(routing.Thresholds{LowMax: 100, MediumMax: 10}, nil)
	if c.Thresholds().MediumMax != 100 {
		t.Errorf("expected MediumMax raised to 100, got %d", c.Thresholds().MediumMax)
	}
	if got := c.Classify(routing.NewTask(strings.Repeat("a", 101), "")); got != routing.LevelHigh {
		t.Errorf("expected high, got %s", got)
	}
}

func TestDescribe(t *testing.T) {
	c := routing.NewClassifier(routing.DefaultThresholds(), map[routing.ComplexityLevel]string{
		routing.LevelHigh: "Needs the big model",
	})
	if got := c.Describe(routing.LevelHigh); got != "Needs the big model" {
		t.Errorf("unexpected description %q", got)
	}
	if got := c.Describe(routing.LevelLow); got != "Simple queries and code snippets" {
		t.Errorf("unexpected default description %q", got)
	}
	if got := c.Describe(routing.ComplexityLevel(9)); got != "Unknown complexity" {
		t.Errorf("unexpected description for unknown level %q", got)
	}
}

func TestParseComplexityLevel(t *testing.T) {
	if _, ok := routing.ParseComplexityLevel("auto"); ok {
		t.Error("auto must not parse as a level")
	}
	if _, ok := routing.ParseComplexityLevel(""); ok {
		t.Error("empty string must not parse as a level")
	}
	if l, ok := routing.ParseComplexityLevel(" Medium "); !ok || l != routing.LevelMedium {
		t.Errorf("expected medium, got %s (%v)", l, ok)
	}
}
