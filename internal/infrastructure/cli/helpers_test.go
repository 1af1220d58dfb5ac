package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/felixgeelhaar/hybridai/pkg/credentials"
)

// isolate points configuration and key files at a temp dir and clears
// provider keys from the environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HYBRID_AI_CREDENTIALS_LOCAL_FILE", filepath.Join(dir, "project.env"))
	t.Setenv("HYBRID_AI_CREDENTIALS_GLOBAL_FILE", filepath.Join(dir, "global.env"))
	t.Setenv("HYBRID_AI_PROGRESS_ENABLED", "false")
	for _, name := range []string{
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "QWEN_API_KEY", "ALIBABA_CLOUD_ACCESS_KEY_SECRET",
		"OPENROUTER_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(name, "")
	}
	return dir
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(RootCmd)
	runKeys = credentials.Credentials{}

	var stdout, stderr bytes.Buffer
	RootCmd.SetOut(&stdout)
	RootCmd.SetErr(&stderr)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	err := RootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
