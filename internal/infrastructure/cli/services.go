package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hybridai/internal/infrastructure/config"
	"github.com/felixgeelhaar/hybridai/internal/infrastructure/logging"
	"github.com/felixgeelhaar/hybridai/internal/infrastructure/wiring"
)

func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, err := config.Load(config.Options{ConfigFile: cfgFile, ProjectDir: cwd})
	if err != nil {
		return nil, NewCLIError("failed to load configuration", "Run 'hybrid-ai config show' or fix the file named above", err)
	}
	return cfg, nil
}

// loadServices builds the application services for a command. Logs go to
// the command's stderr.
func loadServices(cmd *cobra.Command, opts wiring.Options) (*wiring.AppServices, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Verbose: verbose,
		Out:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, NewCLIError("invalid logging configuration", "Set logging.level to debug, info, warn or error", err)
	}
	return wiring.BuildAppServices(cfg, logger, opts), nil
}
