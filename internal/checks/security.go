package checks

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// TypeSecurity scans dependencies for known vulnerabilities.
const TypeSecurity = "security"

type securityArgs struct {
	// Packages are scan targets. Defaults to ./...
	Packages []string `mapstructure:"packages"`
}

// SecurityChecker wraps govulncheck. It is skipped (reported
// unavailable) when the tool is not installed.
type SecurityChecker struct {
	name string
	args securityArgs
}

func newSecurityChecker(name string, params map[string]any) (Checker, error) {
	var args securityArgs
	if err := mapstructure.Decode(params, &args); err != nil {
		return nil, fmt.Errorf("decoding %s params: %w", TypeSecurity, err)
	}
	if len(args.Packages) == 0 {
		args.Packages = []string{"./..."}
	}
	return &SecurityChecker{name: name, args: args}, nil
}

func (c *SecurityChecker) Name() string           { return c.name }
func (c *SecurityChecker) CheckType() string      { return TypeSecurity }
func (c *SecurityChecker) Dependencies() []string { return nil }
func (c *SecurityChecker) IsAvailable() bool      { return toolOnPath("govulncheck") }
func (c *SecurityChecker) Cleanup() error         { return nil }

func (c *SecurityChecker) RunCheck(ctx context.Context, runArgs RunArgs) (*models.CheckResult, error) {
	out, err := runCommand(ctx, runArgs.WorkingDirectory, "govulncheck", c.args.Packages...)
	if err != nil {
		return nil, fmt.Errorf("running govulncheck: %w", err)
	}

	result := models.NewCheckResult(c.name, models.StatusSuccess)
	switch out.ExitCode {
	case 0:
	case 3:
		// Exit 3 means vulnerabilities were found, not a tool fault.
		result.Status = models.StatusFailure
		result.Errors = append(result.Errors, "known vulnerabilities found in dependencies")
		result.Suggestions = append(result.Suggestions, "upgrade the flagged modules to fixed versions")
		result.Output = out.Stdout
	default:
		result.Status = models.StatusFailure
		result.Errors = append(result.Errors, splitLines(out.Stderr)...)
	}
	if runArgs.Verbose {
		result.Output = out.Stdout
	}
	return result, nil
}
