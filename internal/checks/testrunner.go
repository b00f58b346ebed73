package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// TypeTests runs the project's unit tests.
const TypeTests = "tests"

type testArgs struct {
	// Packages are go test package patterns. Defaults to ./...
	Packages []string `mapstructure:"packages"`

	// Race enables the race detector.
	Race bool `mapstructure:"race"`

	// Run is passed through as go test -run.
	Run string `mapstructure:"run"`
}

// TestChecker wraps go test.
type TestChecker struct {
	name string
	args testArgs
}

func newTestChecker(name string, params map[string]any) (Checker, error) {
	var args testArgs
	if err := mapstructure.Decode(params, &args); err != nil {
		return nil, fmt.Errorf("decoding %s params: %w", TypeTests, err)
	}
	if len(args.Packages) == 0 {
		args.Packages = []string{"./..."}
	}
	return &TestChecker{name: name, args: args}, nil
}

func (c *TestChecker) Name() string           { return c.name }
func (c *TestChecker) CheckType() string      { return TypeTests }
func (c *TestChecker) Dependencies() []string { return []string{TypeCodeQuality} }
func (c *TestChecker) IsAvailable() bool      { return toolOnPath("go") }
func (c *TestChecker) Cleanup() error         { return nil }

func (c *TestChecker) RunCheck(ctx context.Context, runArgs RunArgs) (*models.CheckResult, error) {
	cmdArgs := []string{"test"}
	if c.args.Race {
		cmdArgs = append(cmdArgs, "-race")
	}
	if c.args.Run != "" {
		cmdArgs = append(cmdArgs, "-run", c.args.Run)
	}
	cmdArgs = append(cmdArgs, c.args.Packages...)

	out, err := runCommand(ctx, runArgs.WorkingDirectory, "go", cmdArgs...)
	if err != nil {
		return nil, fmt.Errorf("running go test: %w", err)
	}

	result := models.NewCheckResult(c.name, models.StatusSuccess)
	if out.ExitCode != 0 {
		result.Status = models.StatusFailure
		result.Errors = append(result.Errors, failedTestLines(out.Stdout)...)
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, splitLines(out.Stderr)...)
		}
		result.Suggestions = append(result.Suggestions, "run go test locally on the failing packages")
	}
	if runArgs.Verbose || out.ExitCode != 0 {
		result.Output = out.Stdout
	}
	result.MergeMetadata(map[string]any{"packages": c.args.Packages, "race": c.args.Race})
	return result, nil
}

// failedTestLines keeps only the lines naming failed tests or packages
// so reports stay readable.
func failedTestLines(stdout string) []string {
	var lines []string
	for _, line := range strings.Split(stdout, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--- FAIL") || strings.HasPrefix(trimmed, "FAIL") {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
