package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hybridai/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/hybridai/pkg/application"
	"github.com/felixgeelhaar/hybridai/pkg/credentials"
)

var (
	runComplexity string
	runLocal      bool
	runRemote     bool
	runModel      string
	runKeys       credentials.Credentials
	runDryRun     bool
	runRender     bool
	runExplain    bool
)

func runTask(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	task := strings.TrimSpace(strings.Join(args, " "))
	if task == "" {
		return application.ErrEmptyTask
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	services, err := loadServices(cmd, wiring.Options{Progress: errOut})
	if err != nil {
		return err
	}

	req := application.RouteRequest{
		Task:        task,
		Complexity:  runComplexity,
		ForceLocal:  runLocal,
		ForceRemote: runRemote,
		Model:       runModel,
		Keys:        runKeys,
		DryRun:      runDryRun,
	}

	plan, err := services.Router.Plan(cmd.Context(), req)
	if err != nil {
		return err
	}
	if runExplain {
		printPlan(out, plan)
		return nil
	}
	printDecision(errOut, plan)

	res, err := services.Router.Execute(cmd.Context(), plan)
	if res != nil {
		if report := res.Report(); report != "" {
			if err != nil {
				fmt.Fprintln(errOut, warnStyle.Render("Partial results from completed phases:"))
			}
			printReport(out, report, runRender)
		}
	}
	return err
}

func init() {
	f := RootCmd.Flags()
	f.StringVarP(&runComplexity, "complexity", "c", "", "Override complexity: low, medium or high")
	f.BoolVarP(&runLocal, "local", "l", false, "Force the local model server")
	f.BoolVarP(&runRemote, "remote", "r", false, "Force direct cloud APIs")
	f.StringVarP(&runModel, "model", "m", "", "Model for the chosen backend (the planner in the collaborative pipeline)")
	f.StringVar(&runKeys.Gemini, "gemini-key", "", "Gemini API key for this run")
	f.StringVar(&runKeys.Qwen, "qwen-key", "", "Qwen (DashScope) API key for this run")
	f.StringVar(&runKeys.OpenRouter, "openrouter-key", "", "OpenRouter API key for this run")
	f.StringVar(&runKeys.Anthropic, "anthropic-key", "", "Anthropic API key for this run")
	f.BoolVar(&runDryRun, "dry-run", false, "Simulate every backend without network calls")
	f.BoolVar(&runRender, "render", false, "Render the report as markdown")
	f.BoolVar(&runExplain, "explain", false, "Print the routing plan without running the task")
	RootCmd.MarkFlagsMutuallyExclusive("local", "remote")
}
