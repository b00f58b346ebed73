package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gauntlet-dev/gauntlet/internal/config"
	"github.com/gauntlet-dev/gauntlet/internal/wizard"
)

var (
	initDir      string
	initDefaults bool
	initForce    bool
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .gauntlet.yaml for this project",
		Args:  cobra.NoArgs,
		RunE:  initCommandE,
	}
	cmd.Flags().StringVar(&initDir, "dir", ".", "Directory to create the config in")
	cmd.Flags().BoolVar(&initDefaults, "defaults", false, "Skip the wizard and write a standard setup")
	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	return cmd
}

func initCommandE(cmd *cobra.Command, args []string) error {
	path := filepath.Join(initDir, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	spec, err := wizard.RunInitWizard(cmd.InOrStdin(), cmd.OutOrStdout(), initDefaults)
	if err != nil {
		return err
	}

	content, err := wizard.GenerateConfig(spec)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d checks. Run 'gauntlet run' to try it.\n",
		path, len(spec.CheckTypes))
	return nil
}
