package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/hybridai/internal/infrastructure/config"
)

func load(t *testing.T, opts config.Options) *config.Config {
	t.Helper()
	if opts.UserDir == "" {
		opts.UserDir = t.TempDir()
	}
	if opts.ProjectDir == "" {
		opts.ProjectDir = t.TempDir()
	}
	cfg, err := config.Load(opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := load(t, config.Options{})

	if cfg.Complexity.LowMax != 50 || cfg.Complexity.MediumMax != 200 {
		t.Errorf("thresholds = %d/%d", cfg.Complexity.LowMax, cfg.Complexity.MediumMax)
	}
	if cfg.Local.BaseURL != "http://localhost:11434" || cfg.Local.DefaultModel != "smollm2:1.7b" {
		t.Errorf("local = %+v", cfg.Local)
	}
	if cfg.Remote.DefaultModel != "gemini-pro" {
		t.Errorf("remote model = %s", cfg.Remote.DefaultModel)
	}
	if cfg.Timeouts.Call != 120*time.Second || cfg.Progress.Interval != 10*time.Second {
		t.Errorf("durations = %v %v", cfg.Timeouts.Call, cfg.Progress.Interval)
	}
	if !cfg.Progress.Enabled || !cfg.Local.AutoSelect {
		t.Error("expected progress and auto select enabled by default")
	}
	if strings.HasPrefix(cfg.Credentials.GlobalFile, "~") {
		t.Errorf("global file not expanded: %s", cfg.Credentials.GlobalFile)
	}
}

func TestLoad_UserAndProjectFiles(t *testing.T) {
	userDir := t.TempDir()
	writeFile(t, filepath.Join(userDir, "config.yaml"), "complexity:\n  low_max: 80\nremote:\n  default_model: qwen-turbo\n")

	projectDir := t.TempDir()
	writeFile(t, filepath.Join(projectDir, ".hybrid-ai.yaml"), "remote:\n  default_model: gemini-1.5-pro\n")
	nested := filepath.Join(projectDir, "sub", "dir")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := load(t, config.Options{UserDir: userDir, ProjectDir: nested})
	if cfg.Complexity.LowMax != 80 {
		t.Errorf("user file ignored: low_max = %d", cfg.Complexity.LowMax)
	}
	if cfg.Remote.DefaultModel != "gemini-1.5-pro" {
		t.Errorf("project file should win: %s", cfg.Remote.DefaultModel)
	}
	if cfg.Complexity.MediumMax != 200 {
		t.Errorf("defaults lost after merge: %d", cfg.Complexity.MediumMax)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("HYBRID_AI_COMPLEXITY_MEDIUM_MAX", "300")
	t.Setenv("LOCAL_AI_BASE_URL", "http://gpu-box:11434")
	t.Setenv("DEFAULT_OPENROUTER_MODEL", "openai/gpt-4o-mini")
	t.Setenv("HYBRID_AI_AGGREGATOR_DEFAULT_MODEL", "anthropic/claude-3-haiku")

	cfg := load(t, config.Options{})
	if cfg.Complexity.MediumMax != 300 {
		t.Errorf("medium_max = %d", cfg.Complexity.MediumMax)
	}
	if cfg.Local.BaseURL != "http://gpu-box:11434" {
		t.Errorf("legacy variable ignored: %s", cfg.Local.BaseURL)
	}
	if cfg.Aggregator.DefaultModel != "anthropic/claude-3-haiku" {
		t.Errorf("prefixed variable should beat legacy one: %s", cfg.Aggregator.DefaultModel)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "timeouts:\n  call: 45s\n")

	cfg := load(t, config.Options{ConfigFile: path})
	if cfg.Timeouts.Call != 45*time.Second {
		t.Errorf("call timeout = %v", cfg.Timeouts.Call)
	}

	if _, err := config.Load(config.Options{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml"), ProjectDir: t.TempDir()}); err == nil {
		t.Error("expected error for missing explicit file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "timeouts:\n  call: 0s\ncomplexity:\n  low_max: -1\n")

	_, err := config.Load(config.Options{ConfigFile: path, ProjectDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "timeouts.call") || !strings.Contains(err.Error(), "negative") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestWriteStarter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hybrid-ai", "config.yaml")
	if err := config.WriteStarter(path, false); err != nil {
		t.Fatalf("WriteStarter: %v", err)
	}
	if err := config.WriteStarter(path, false); err == nil {
		t.Error("expected refusal to overwrite")
	}
	if err := config.WriteStarter(path, true); err != nil {
		t.Errorf("forced overwrite: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v", info.Mode().Perm())
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "~/.hybrid-ai-config") {
		t.Errorf("starter file should keep ~ in paths:\n%s", data)
	}

	cfg := load(t, config.Options{ConfigFile: path})
	if cfg.Timeouts.Call != 120*time.Second || cfg.Aggregator.StrongModel != "meta-llama/llama-3-70b-instruct" {
		t.Errorf("starter file does not round-trip: %+v", cfg)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
