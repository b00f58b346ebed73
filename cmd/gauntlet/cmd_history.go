package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/gauntlet-dev/gauntlet/internal/config"
	"github.com/gauntlet-dev/gauntlet/internal/history"
	"github.com/gauntlet-dev/gauntlet/internal/reporting"
)

var (
	historyDir  string
	historyShow bool
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE:  historyCommandE,
	}
	cmd.Flags().StringVar(&historyDir, "dir", ".", "Project directory")
	cmd.Flags().BoolVar(&historyShow, "latest", false, "Show the full report of the most recent run")
	return cmd
}

func historyCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(historyDir)
	if err != nil {
		return err
	}

	store := history.NewStore(historyStorePath(cfg), cfg.History.Retention)
	out := cmd.OutOrStdout()

	if historyShow {
		latest, err := store.Latest()
		if err != nil {
			return err
		}
		if latest == nil {
			fmt.Fprintln(out, "No runs recorded yet.")
			return nil
		}
		fmt.Fprint(out, reporting.FormatMarkdown(latest))
		return nil
	}

	entries, err := store.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	rows := [][]string{{"WHEN", "STATUS", "CHECKS", "FAILED"}}
	for _, e := range entries {
		outcome, err := store.Load(e.Path)
		if err != nil {
			continue
		}
		rows = append(rows, []string{
			e.Timestamp.Local().Format(time.DateTime),
			string(outcome.OverallStatus),
			fmt.Sprintf("%d", outcome.Digest.TotalChecks),
			fmt.Sprintf("%d", outcome.Digest.Failed),
		})
	}
	printTable(out, rows)
	return nil
}

// historyStorePath anchors a relative history dir at the config file's
// directory so every subcommand sees the same store.
func historyStorePath(cfg *config.Config) string {
	dir := cfg.History.Dir
	if dir != "" && !filepath.IsAbs(dir) && cfg.Dir != "" {
		dir = filepath.Join(cfg.Dir, dir)
	}
	return dir
}
