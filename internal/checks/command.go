package checks

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// commandOutput captures one subprocess run.
type commandOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// runCommand executes a tool in dir, capturing stdout and stderr. When
// ctx is canceled the whole process group is killed so tool children
// (compilers, test binaries) die with it. A non-zero exit is not an
// error here; callers read ExitCode.
func runCommand(ctx context.Context, dir, name string, args ...string) (*commandOutput, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	configureProcessGroup(cmd)

	err := cmd.Run()
	out := &commandOutput{
		Stdout: strings.TrimRight(stdout.String(), "\n"),
		Stderr: strings.TrimRight(stderr.String(), "\n"),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, err
	}
	return out, nil
}

// toolOnPath reports whether a tool binary is resolvable.
func toolOnPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
