package testrunner_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/felixgeelhaar/hybridai/pkg/testrunner"
)

func TestExtractCode(t *testing.T) {
	text := "Here is the plan.\n\n```python\ndef add(a, b):\n    return a + b\n```\n\nAnd a helper:\n\n```\nconsole.log('hi')\n```\n\n```js\n```\n"
	blocks := testrunner.ExtractCode(text)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Tag != "python" || !strings.Contains(blocks[0].Code, "def add") {
		t.Errorf("unexpected first block %+v", blocks[0])
	}
	if blocks[1].Tag != "" || !strings.Contains(blocks[1].Code, "console.log") {
		t.Errorf("unexpected second block %+v", blocks[1])
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name  string
		task  string
		block testrunner.CodeBlock
		want  testrunner.Language
	}{
		{"fence tag wins", "write python", testrunner.CodeBlock{Tag: "php", Code: "<?php echo 1;"}, testrunner.LanguagePHP},
		{"task keyword", "build a flask endpoint", testrunner.CodeBlock{Code: "x = 1"}, testrunner.LanguagePython},
		{"js is a word", "parse json files", testrunner.CodeBlock{Code: "const x = () => 1"}, testrunner.LanguageJavaScript},
		{"java not javascript", "a java service", testrunner.CodeBlock{Code: "class A {}"}, testrunner.LanguageJava},
		{"go code shape", "sum numbers", testrunner.CodeBlock{Code: "package main\n\nfunc main() {}\n"}, testrunner.LanguageGo},
		{"flutter", "a flutter screen", testrunner.CodeBlock{Code: "class A extends StatelessWidget {}"}, testrunner.LanguageDart},
		{"unknown", "say hello", testrunner.CodeBlock{Code: "hello"}, testrunner.LanguageUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testrunner.DetectLanguage(tt.task, tt.block); got != tt.want {
				t.Errorf("DetectLanguage = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRunTests_NoCode(t *testing.T) {
	r := testrunner.NewSyntaxRunner()
	report, err := r.RunTests(context.Background(), "just prose, no code", "say hello")
	if err != nil {
		t.Fatalf("RunTests: %v", err)
	}
	if report.Success {
		t.Error("expected failure when there is no code")
	}
}

func TestRunTests_MissingChecker(t *testing.T) {
	tmp := t.TempDir()
	r := testrunner.NewSyntaxRunner(
		testrunner.WithTempRoot(tmp),
		testrunner.WithLookPath(func(string) (string, error) { return "", errors.New("not found") }),
	)
	report, err := r.RunTests(context.Background(), "```python\nprint('x')\n```", "python script")
	if err != nil {
		t.Fatalf("RunTests: %v", err)
	}
	if report.Success {
		t.Error("missing checker must not count as success")
	}
	if report.Language != "python" {
		t.Errorf("language = %q", report.Language)
	}
	if !strings.Contains(report.Output, "python3 not found") {
		t.Errorf("unexpected output %q", report.Output)
	}
	assertEmpty(t, tmp)
}

func TestRunTests_UnsupportedLanguage(t *testing.T) {
	r := testrunner.NewSyntaxRunner(testrunner.WithTempRoot(t.TempDir()))
	report, err := r.RunTests(context.Background(), "```java\npublic class A {}\n```", "java")
	if err != nil {
		t.Fatalf("RunTests: %v", err)
	}
	if !report.Success || !strings.Contains(report.Output, "not available") {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestRunTests_Gofmt(t *testing.T) {
	if _, err := exec.LookPath("gofmt"); err != nil {
		t.Skip("gofmt not installed")
	}
	tmp := t.TempDir()
	r := testrunner.NewSyntaxRunner(testrunner.WithTempRoot(tmp))

	good, err := r.RunTests(context.Background(), "```go\npackage main\n\nfunc main() {}\n```", "")
	if err != nil {
		t.Fatalf("RunTests: %v", err)
	}
	if !good.Success {
		t.Errorf("valid Go reported as failing: %+v", good)
	}

	bad, err := r.RunTests(context.Background(), "```go\npackage main\n\nfunc main( {\n```", "")
	if err != nil {
		t.Fatalf("RunTests: %v", err)
	}
	if bad.Success || len(bad.Errors) != 1 {
		t.Errorf("invalid Go reported as passing: %+v", bad)
	}
	assertEmpty(t, tmp)
}

func assertEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}
