package checks

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// TypePerformance runs the project's benchmarks.
const TypePerformance = "performance"

type performanceArgs struct {
	// Pattern selects benchmarks, passed as go test -bench. Defaults
	// to running all of them.
	Pattern string `mapstructure:"pattern"`

	// Benchtime is passed through as -benchtime when set.
	Benchtime string `mapstructure:"benchtime"`

	// Packages are go test package patterns. Defaults to ./...
	Packages []string `mapstructure:"packages"`
}

// PerformanceChecker wraps go test -bench. Benchmarks that fail to
// build or panic fail the check; timing regressions are left to the
// reader of the captured output.
type PerformanceChecker struct {
	name string
	args performanceArgs
}

func newPerformanceChecker(name string, params map[string]any) (Checker, error) {
	var args performanceArgs
	if err := mapstructure.Decode(params, &args); err != nil {
		return nil, fmt.Errorf("decoding %s params: %w", TypePerformance, err)
	}
	if args.Pattern == "" {
		args.Pattern = "."
	}
	if len(args.Packages) == 0 {
		args.Packages = []string{"./..."}
	}
	return &PerformanceChecker{name: name, args: args}, nil
}

func (c *PerformanceChecker) Name() string           { return c.name }
func (c *PerformanceChecker) CheckType() string      { return TypePerformance }
func (c *PerformanceChecker) Dependencies() []string { return []string{TypeTests} }
func (c *PerformanceChecker) IsAvailable() bool      { return toolOnPath("go") }
func (c *PerformanceChecker) Cleanup() error         { return nil }

func (c *PerformanceChecker) RunCheck(ctx context.Context, runArgs RunArgs) (*models.CheckResult, error) {
	cmdArgs := []string{"test", "-run", "^$", "-bench", c.args.Pattern}
	if c.args.Benchtime != "" {
		cmdArgs = append(cmdArgs, "-benchtime", c.args.Benchtime)
	}
	cmdArgs = append(cmdArgs, c.args.Packages...)

	out, err := runCommand(ctx, runArgs.WorkingDirectory, "go", cmdArgs...)
	if err != nil {
		return nil, fmt.Errorf("running benchmarks: %w", err)
	}

	result := models.NewCheckResult(c.name, models.StatusSuccess)
	result.Output = out.Stdout
	if out.ExitCode != 0 {
		result.Status = models.StatusFailure
		result.Errors = append(result.Errors, failedTestLines(out.Stdout)...)
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, splitLines(out.Stderr)...)
		}
	}
	result.MergeMetadata(map[string]any{"pattern": c.args.Pattern})
	return result, nil
}
