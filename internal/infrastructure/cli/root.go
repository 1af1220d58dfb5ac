package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	cfgFile string
	verbose bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "hybrid-ai [task]",
	Version: Version,
	Short:   "Route AI tasks between local models, a cloud aggregator and direct cloud APIs",
	Long: `hybrid-ai classifies a task by complexity and routes it by what is
configured:

  low     the aggregator (OpenRouter) when a key is set, otherwise the
          local model server (Ollama)
  medium  a six-phase pipeline: a remote model plans and reviews, the
          aggregator or local server implements and improves, and generated
          code is syntax-checked between rounds
  high    a single call to the remote model (Gemini, Qwen or Claude)

Missing backends degrade the choice; --explain shows the reason.`,
	Example: `  hybrid-ai "explain goroutines"
  hybrid-ai -c medium "build a REST API for todos in Go"
  hybrid-ai --explain "refactor this service"
  hybrid-ai --dry-run "write a flutter login screen"`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTask,
}

// Execute runs the root command and prints mapped errors to stderr.
// This is called by main.main().
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := MapError(RootCmd.ExecuteContext(ctx))
	if err != nil {
		printError(RootCmd.ErrOrStderr(), err)
	}
	return err
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.ExitCode != 0 {
		return cliErr.ExitCode
	}
	return 1
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/hybrid-ai/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
