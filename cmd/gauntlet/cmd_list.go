package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/gauntlet-dev/gauntlet/internal/checks"
	"github.com/gauntlet-dev/gauntlet/internal/config"
)

var listDir string

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured checks and available check types",
		Args:  cobra.NoArgs,
		RunE:  listCommandE,
	}
	cmd.Flags().StringVar(&listDir, "dir", ".", "Project directory")
	return cmd
}

func listCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(listDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(cfg.Tasks) == 0 {
		fmt.Fprintln(out, "No checks configured.")
	} else {
		rows := [][]string{{"NAME", "TYPE", "DEPENDS ON", "TIMEOUT"}}
		for _, tc := range cfg.Tasks {
			timeout := "-"
			if tc.Timeout > 0 {
				timeout = time.Duration(tc.Timeout).String()
			}
			deps := "-"
			if len(tc.DependsOn) > 0 {
				deps = strings.Join(tc.DependsOn, ", ")
			}
			rows = append(rows, []string{tc.Name, tc.Type, deps, timeout})
		}
		printTable(out, rows)
	}

	fmt.Fprintf(out, "\nAvailable check types: %s\n",
		strings.Join(checks.NewRegistry().Types(), ", "))
	return nil
}

func printTable(out io.Writer, rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for _, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			b.WriteString(padRight(cell, widths[i]+2))
		}
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}
}

func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
