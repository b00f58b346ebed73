// Package hooks runs user-defined shell commands at run and check
// boundaries.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"
)

// Hook is one user command bound to a lifecycle stage.
type Hook struct {
	// Command is executed through the shell.
	Command string `yaml:"command" json:"command"`

	// WorkingDirectory overrides the runner's default directory.
	WorkingDirectory string `yaml:"working_directory,omitempty" json:"working_directory,omitempty"`

	// OKExitCodes are exit codes treated as success besides zero.
	OKExitCodes []int `yaml:"ok_exit_codes,omitempty" json:"ok_exit_codes,omitempty"`

	// ErrorOnFail makes a failing hook abort the run instead of only
	// logging a warning.
	ErrorOnFail bool `yaml:"error_on_fail,omitempty" json:"error_on_fail,omitempty"`
}

// Config groups hooks by lifecycle stage.
type Config struct {
	BeforeRun   []Hook `yaml:"before_run,omitempty" json:"before_run,omitempty"`
	AfterRun    []Hook `yaml:"after_run,omitempty" json:"after_run,omitempty"`
	BeforeCheck []Hook `yaml:"before_check,omitempty" json:"before_check,omitempty"`
	AfterCheck  []Hook `yaml:"after_check,omitempty" json:"after_check,omitempty"`
}

// Runner executes hooks with a default working directory.
type Runner struct {
	defaultDir string
}

// NewRunner creates a hook runner rooted at defaultDir.
func NewRunner(defaultDir string) *Runner {
	return &Runner{defaultDir: defaultDir}
}

// Execute runs the hooks of one stage in order. extraEnv entries are
// KEY=VALUE pairs appended to the process environment. The first
// failing hook with ErrorOnFail set stops the stage.
func (r *Runner) Execute(ctx context.Context, stage string, hooks []Hook, extraEnv []string) error {
	for i, h := range hooks {
		if err := r.runOne(ctx, stage, i, h, extraEnv); err != nil {
			if h.ErrorOnFail {
				return fmt.Errorf("hook %s[%d]: %w", stage, i, err)
			}
			slog.Warn("hook failed", "stage", stage, "index", i, "error", err)
		}
	}
	return nil
}

func (r *Runner) runOne(ctx context.Context, stage string, index int, h Hook, extraEnv []string) error {
	if strings.TrimSpace(h.Command) == "" {
		return nil
	}

	slog.Debug("running hook", "stage", stage, "index", index, "command", h.Command)

	cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
	cmd.Dir = h.WorkingDirectory
	if cmd.Dir == "" {
		cmd.Dir = r.defaultDir
	}
	cmd.Env = append(os.Environ(), extraEnv...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && slices.Contains(h.OKExitCodes, exitErr.ExitCode()) {
		return nil
	}
	return fmt.Errorf("%q: %w (output: %s)", h.Command, err, strings.TrimSpace(output.String()))
}
