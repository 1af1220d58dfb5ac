package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hybridai/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/hybridai/pkg/credentials"
)

var (
	keysGlobal bool
	keysForce  bool
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Inspect and store backend API keys",
}

var keysShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved API keys (masked) and where they came from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, wiring.Options{})
		if err != nil {
			return err
		}
		res := services.Resolver.Resolve(cmd.Context(), credentials.Credentials{})
		out := cmd.OutOrStdout()

		source := res.Source.String()
		if res.Path != "" {
			source += " (" + res.Path + ")"
		}
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Source:"), source)
		for _, w := range res.Warnings {
			fmt.Fprintln(out, warnStyle.Render("! "+w))
		}

		columns := []table.Column{
			{Title: "Provider", Width: 12},
			{Title: "Variable", Width: 20},
			{Title: "Key", Width: 16},
			{Title: "Status", Width: 40},
		}
		var rows []table.Row
		for _, p := range credentials.Providers {
			key := res.Credentials.Get(p)
			status := "valid"
			if err := credentials.ValidateKey(p, key); err != nil {
				status = err.Error()
			}
			rows = append(rows, table.Row{string(p), p.EnvVar(), credentials.MaskKey(key), status})
		}
		fmt.Fprintln(out, renderTable(columns, rows))
		return nil
	},
}

var keysSetCmd = &cobra.Command{
	Use:   "set <provider> <key>",
	Short: "Store an API key in the project or global key file",
	Long: `Store an API key. Providers: gemini, qwen, openrouter, anthropic.

Keys are written to the project key file (credentials.local_file, default
.env) or, with --global, to credentials.global_file. Files are created
with 0600 permissions.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := credentials.ParseProvider(args[0])
		if err != nil {
			return NewCLIError("unknown provider", "Use one of gemini, qwen, openrouter, anthropic", err)
		}
		key := strings.TrimSpace(args[1])
		if !keysForce {
			if err := credentials.ValidateKey(provider, key); err != nil {
				return NewCLIError("refusing to store key", "Pass --force to store it anyway", err)
			}
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := cfg.Credentials.LocalFile
		if keysGlobal {
			path = cfg.Credentials.GlobalFile
		}
		if err := credentials.SaveKey(path, provider.EnvVar(), key); err != nil {
			return NewCLIError("failed to save key", "Check that the key file directory is writable", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s saved to %s\n",
			okStyle.Render("✓"), provider.EnvVar(), path)
		return nil
	},
}

func init() {
	keysSetCmd.Flags().BoolVar(&keysGlobal, "global", false, "Write to the global key file")
	keysSetCmd.Flags().BoolVar(&keysForce, "force", false, "Store the key even if it looks malformed")
	keysCmd.AddCommand(keysShowCmd, keysSetCmd)
	RootCmd.AddCommand(keysCmd)
}
