package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gauntlet",
		Short: "Gauntlet - run CI checks locally with dependency-aware scheduling",
		Long: `Gauntlet runs a project's CI checks locally.

Checks are declared in .gauntlet.yaml, scheduled by dependency level,
and executed with resource-aware concurrency. Failures are classified
and, where safe, recovered automatically.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newPlanCommand())
	cmd.AddCommand(newHealthCommand())
	cmd.AddCommand(newHistoryCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
