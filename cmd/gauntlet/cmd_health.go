package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gauntlet-dev/gauntlet/internal/config"
	"github.com/gauntlet-dev/gauntlet/internal/recovery"
	"github.com/gauntlet-dev/gauntlet/internal/resource"
)

var (
	healthDir  string
	healthJSON bool
)

func newHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Report resource pressure and readiness for a check run",
		Args:  cobra.NoArgs,
		RunE:  healthCommandE,
	}
	cmd.Flags().StringVar(&healthDir, "dir", ".", "Project directory")
	cmd.Flags().BoolVar(&healthJSON, "json", false, "Emit health as JSON")
	return cmd
}

func healthCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(healthDir)
	if err != nil {
		return err
	}

	monitor := resource.NewMonitor(cfg.MaxParallel,
		resource.WithThresholds(cfg.Resources.MemoryThresholdPercent, cfg.Resources.CPUThresholdPercent))

	snap, err := monitor.Snapshot()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: resource sampling failed: %v\n", err)
	}

	health := recovery.AssessHealth(recovery.Stats{}, snap)

	out := cmd.OutOrStdout()
	if healthJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(health)
	}

	fmt.Fprintf(out, "Status:  %s\n", health.Status)
	fmt.Fprintf(out, "Memory:  %.1f%%\n", snap.MemoryPercent)
	fmt.Fprintf(out, "CPU:     %.1f%%\n", snap.CPUPercent)
	fmt.Fprintf(out, "Disk:    %.1f%%\n", snap.DiskPercent)
	fmt.Fprintf(out, "Workers: %d\n", snap.MaxSlots)
	for _, issue := range health.Issues {
		fmt.Fprintf(out, "  ! %s\n", issue)
	}
	return nil
}
