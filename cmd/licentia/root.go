package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"licentia-hq/licentia/pkg/config"
	"licentia-hq/licentia/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "licentia",
	Short: "Licentia - machine-readable licence catalogue",
	Long: `Licentia catalogs machine-readable usage licences: ODRL-style policies
composed of rules (permissions, duties, prohibitions), each referencing a
fixed vocabulary of actions and optional assignor/assignee parties.

The catalogue lives in a single SQLite database. Policies are created
atomically with all their rules, actions, and parties; the match command
ranks the whole catalogue against a desired set of rules.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration file (defaults when absent) and
// installs the configured logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	if _, err := logging.Setup(logging.Config{
		Level:     level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		Writer:    os.Stderr,
	}); err != nil {
		return nil, err
	}

	return cfg, nil
}
