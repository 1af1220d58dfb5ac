// Package testrunner checks model-generated code with the local language
// toolchains.
package testrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// TestReport is the outcome of checking one implementation.
type TestReport struct {
	Success  bool     `json:"success"`
	Language string   `json:"language"`
	Output   string   `json:"output"`
	Errors   []string `json:"errors,omitempty"`
}

type checker struct {
	binary string
	args   func(file string) []string
}

var checkers = map[Language]checker{
	LanguageJavaScript: {"node", func(f string) []string { return []string{"--check", f} }},
	LanguagePython:     {"python3", func(f string) []string { return []string{"-m", "py_compile", f} }},
	LanguagePHP:        {"php", func(f string) []string { return []string{"-l", f} }},
	LanguageGo:         {"gofmt", func(f string) []string { return []string{"-l", "-e", f} }},
}

// SyntaxRunner writes each code block to a temporary directory and runs the
// language's syntax checker on it.
type SyntaxRunner struct {
	timeout  time.Duration
	lookPath func(string) (string, error)
	tempRoot string
}

// Option configures a SyntaxRunner.
type Option func(*SyntaxRunner)

// WithTimeout bounds each checker invocation.
func WithTimeout(d time.Duration) Option {
	return func(r *SyntaxRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLookPath replaces exec.LookPath (for testing).
func WithLookPath(fn func(string) (string, error)) Option {
	return func(r *SyntaxRunner) { r.lookPath = fn }
}

// WithTempRoot sets where temporary directories are created.
func WithTempRoot(dir string) Option {
	return func(r *SyntaxRunner) { r.tempRoot = dir }
}

func NewSyntaxRunner(opts ...Option) *SyntaxRunner {
	r := &SyntaxRunner{
		timeout:  30 * time.Second,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunTests checks code produced for task. A failing check is reported in the
// TestReport; an error means the runner itself could not work.
func (r *SyntaxRunner) RunTests(ctx context.Context, code, task string) (TestReport, error) {
	blocks := ExtractCode(code)
	if len(blocks) == 0 {
		lang := DetectLanguage(task, CodeBlock{Code: code})
		if lang == LanguageUnknown || strings.TrimSpace(code) == "" {
			return TestReport{
				Success:  false,
				Language: string(LanguageUnknown),
				Output:   "no code block found in the implementation",
			}, nil
		}
		blocks = []CodeBlock{{Code: code}}
	}

	dir, err := os.MkdirTemp(r.tempRoot, "hybrid-ai-tests-")
	if err != nil {
		return TestReport{}, fmt.Errorf("failed to create test directory: %w", err)
	}
	defer os.RemoveAll(dir) //nolint:errcheck // best-effort cleanup

	report := TestReport{Success: true}
	var outputs []string
	languages := map[Language]bool{}

	for i, block := range blocks {
		lang := DetectLanguage(task, block)
		languages[lang] = true

		file := filepath.Join(dir, fmt.Sprintf("block_%d.%s", i+1, lang.Extension()))
		if err := os.WriteFile(file, []byte(block.Code), 0600); err != nil {
			return TestReport{}, fmt.Errorf("failed to write test file: %w", err)
		}

		out, ok := r.check(ctx, lang, file)
		outputs = append(outputs, fmt.Sprintf("block %d (%s): %s", i+1, lang, out))
		if !ok {
			report.Success = false
			report.Errors = append(report.Errors, fmt.Sprintf("block %d (%s): %s", i+1, lang, out))
		}
	}

	report.Language = joinLanguages(languages)
	report.Output = strings.Join(outputs, "\n")
	return report, nil
}

func (r *SyntaxRunner) check(ctx context.Context, lang Language, file string) (string, bool) {
	c, ok := checkers[lang]
	if !ok {
		return "syntax check not available for this language", true
	}
	bin, err := r.lookPath(c.binary)
	if err != nil {
		return fmt.Sprintf("%s not found on PATH; syntax could not be checked", c.binary), false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	// #nosec G204 -- binary comes from a fixed table
	cmd := exec.CommandContext(ctx, bin, c.args(file)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err = cmd.Run()

	msg := strings.TrimSpace(strings.ReplaceAll(stderr.String()+stdout.String(), file, filepath.Base(file)))
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("%s timed out after %s", c.binary, r.timeout), false
	}
	if err != nil {
		if msg == "" {
			msg = err.Error()
		}
		return msg, false
	}
	if msg == "" || lang == LanguageGo {
		// gofmt -l prints the file name when formatting differs; that is not a syntax error.
		msg = "syntax OK"
	}
	return msg, true
}

func joinLanguages(set map[Language]bool) string {
	var names []string
	for _, l := range []Language{LanguageJavaScript, LanguagePython, LanguagePHP, LanguageGo, LanguageJava, LanguageDart, LanguageUnknown} {
		if set[l] {
			names = append(names, string(l))
		}
	}
	return strings.Join(names, ",")
}
