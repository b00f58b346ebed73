package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gauntlet-dev/gauntlet/internal/config"
	"github.com/gauntlet-dev/gauntlet/internal/orchestration"
	"github.com/gauntlet-dev/gauntlet/internal/resource"
)

var (
	planDir  string
	planJSON bool
	planOnly []string
)

func newPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show how checks would be scheduled without running them",
		Args:  cobra.NoArgs,
		RunE:  planCommandE,
	}
	cmd.Flags().StringVar(&planDir, "dir", ".", "Project directory")
	cmd.Flags().BoolVar(&planJSON, "json", false, "Emit the plan as JSON")
	cmd.Flags().StringArrayVar(&planOnly, "only", nil, "Plan only these checks plus their dependencies")
	return cmd
}

func planCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(planDir)
	if err != nil {
		return err
	}

	tasks, err := orchestration.FilterBySelection(cfg.CheckTasks(), planOnly)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return fmt.Errorf("no tasks configured")
	}

	monitor := resource.NewMonitor(cfg.MaxParallel)
	plan, err := orchestration.BuildPlan(tasks, monitor.MaxParallel())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if planJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	fmt.Fprintf(out, "Execution plan (max %d in parallel):\n\n", plan.MaxParallel)
	for _, level := range plan.Levels {
		names := make([]string, len(level.Tasks))
		for i, t := range level.Tasks {
			names[i] = t.Name
		}
		fmt.Fprintf(out, "  level %d: %s\n", level.Level, strings.Join(names, ", "))
	}
	return nil
}
