// cmd/sessionkeeper/root.go
package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/tamzrod/session-keeper/internal/config"
	"github.com/tamzrod/session-keeper/internal/logger"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	envFile    string
	verbose    bool
	logFile    string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "sessionkeeper",
		Short:         "Keep a web session alive and report on its health",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to YAML config file")
	pf.StringVar(&g.envFile, "env-file", ".env", "Path to .env file")
	pf.BoolVar(&g.verbose, "verbose", false, "Enable debug logging")
	pf.StringVar(&g.logFile, "log-file", "", "Also log to this file (rotated)")

	root.AddCommand(
		newRunCmd(g),
		newStatusCmd(g),
		newTimeoutTestCmd(g),
		newLoginCmd(g),
		newHistoryCmd(g),
		newCompareLoginsCmd(g),
	)
	return root
}

// load reads configuration and applies the global flag overrides.
// It does not validate; commands that need a session validate themselves.
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configPath, g.envFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Log.Verbose = g.verbose
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Log.File = g.logFile
	}
	return cfg, nil
}

// validated runs Validate then Normalize on cfg.
func validated(cfg *config.Config) (*config.Config, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}

func openLogger(cfg config.LogConfig) (*logger.Logger, io.Closer, error) {
	return logger.Open(logger.Config{
		File:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Verbose:    cfg.Verbose,
	})
}
