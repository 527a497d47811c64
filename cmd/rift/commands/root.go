package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	logLevel   string
	jsonOutput bool

	// buildVersion is the release version shown in banners and stamped
	// on telemetry.
	buildVersion = "dev"
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	buildVersion = version
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rift",
		Short: "Rift - Code Fusion Powerhouse",
		Long: `Rift is a polyglot code fusion runtime. Programs group snippets of
different languages into named rifts, execute them through their real
toolchains, and ship the results to deployment sinks.

Features:
  - Multi-language snippets with per-language dependency resolution
  - Content-addressed artifact cache shared across languages
  - Template-based translation between languages
  - Policy-gated deployment fan-out with retries
  - SQLite-backed run history`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default .rift.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newReplCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newExecCommand())
	rootCmd.AddCommand(newDeployCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}
