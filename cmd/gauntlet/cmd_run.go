package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gauntlet-dev/gauntlet/internal/checks"
	"github.com/gauntlet-dev/gauntlet/internal/config"
	"github.com/gauntlet-dev/gauntlet/internal/history"
	"github.com/gauntlet-dev/gauntlet/internal/hooks"
	"github.com/gauntlet-dev/gauntlet/internal/models"
	"github.com/gauntlet-dev/gauntlet/internal/orchestration"
	"github.com/gauntlet-dev/gauntlet/internal/recovery"
	"github.com/gauntlet-dev/gauntlet/internal/reporting"
	"github.com/gauntlet-dev/gauntlet/internal/resource"
)

var (
	runOnly      []string
	runFailFast  bool
	runVerbose   bool
	runFormat    string
	runOutput    string
	runNoHistory bool
	runDir       string
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the project's checks",
		Long: `Run the checks declared in .gauntlet.yaml.

Checks run level by level: a check starts only after every check it
depends on has finished. Within a level, checks run concurrently up to
the resource-derived parallelism limit.`,
		Args: cobra.NoArgs,
		RunE: runCommandE,
	}

	cmd.Flags().StringArrayVar(&runOnly, "only", nil, "Run only these checks plus their dependencies (can be repeated)")
	cmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "Stop scheduling new levels after the first failure")
	cmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Keep full tool output in results")
	cmd.Flags().StringVar(&runFormat, "format", "markdown", "Report format: markdown, json, junit")
	cmd.Flags().StringVarP(&runOutput, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Do not record this run in history")
	cmd.Flags().StringVar(&runDir, "dir", ".", "Project directory to run checks in")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runDir)
	if err != nil {
		return err
	}

	tasks := cfg.CheckTasks()
	if len(tasks) == 0 {
		return fmt.Errorf("no tasks configured; run 'gauntlet init' to create %s", config.ConfigFileName)
	}

	tasks, err = orchestration.FilterBySelection(tasks, runOnly)
	if err != nil {
		return err
	}

	workdir := cfg.WorkingDirectory
	if workdir == "" {
		if workdir = cfg.Dir; workdir == "" {
			workdir = runDir
		}
	}

	monitor := resource.NewMonitor(cfg.MaxParallel,
		resource.WithThresholds(cfg.Resources.MemoryThresholdPercent, cfg.Resources.CPUThresholdPercent),
		resource.WithRetryDelay(time.Duration(cfg.Recovery.RetryDelay)))

	tracker := resource.NewTempTracker(0, 0)
	tracker.Start()
	defer tracker.Close()

	engine := recovery.NewEngine(
		recovery.WithMaxRetryAttempts(cfg.Recovery.MaxRetryAttempts),
		recovery.WithRetryDelay(time.Duration(cfg.Recovery.RetryDelay)),
		recovery.WithAutoRecovery(cfg.AutoRecovery()),
		recovery.WithTempTracker(tracker))

	orch := orchestration.New(checks.NewRegistry(), monitor,
		orchestration.WithWorkingDirectory(workdir),
		orchestration.WithVerbose(runVerbose || cfg.Verbose),
		orchestration.WithFailFast(runFailFast || cfg.FailFast),
		orchestration.WithRecoveryEngine(engine),
		orchestration.WithHooks(hooks.NewRunner(workdir), cfg.Hooks))

	tty := term.IsTerminal(int(os.Stderr.Fd()))
	reporter := newProgressReporter(os.Stderr, tty)
	orch.Subscribe(reporter.Listen)

	outcome, err := orch.ExecuteChecks(cmd.Context(), tasks)
	reporter.Stop()
	if err != nil {
		return err
	}

	if !runNoHistory && cfg.History.Dir != "" {
		store := history.NewStore(historyStorePath(cfg), cfg.History.Retention)
		if _, err := store.Save(outcome); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not record history: %v\n", err)
		}
	}

	if err := writeReport(outcome, runFormat, runOutput); err != nil {
		return err
	}

	if !outcome.IsSuccessful() {
		return &CheckFailureError{Message: fmt.Sprintf("%d of %d checks failed",
			outcome.Digest.Failed, outcome.Digest.TotalChecks)}
	}
	return nil
}

func writeReport(outcome *models.RunOutcome, format, output string) error {
	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "markdown":
		_, err := fmt.Fprint(out, reporting.FormatMarkdown(outcome))
		return err
	case "json":
		return reporting.WriteJSON(out, outcome)
	case "junit":
		return reporting.WriteJUnit(out, outcome)
	default:
		return fmt.Errorf("unknown report format %q (want markdown, json or junit)", format)
	}
}
