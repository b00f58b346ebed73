package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// TypeCodeQuality runs gofmt and go vet over the project.
const TypeCodeQuality = "code_quality"

type qualityArgs struct {
	// Paths limits gofmt to these roots. Defaults to the project root.
	Paths []string `mapstructure:"paths"`

	// Vet disables the go vet pass when explicitly false.
	Vet *bool `mapstructure:"vet"`
}

// QualityChecker flags formatting drift as a warning and vet findings
// as a failure.
type QualityChecker struct {
	name string
	args qualityArgs
}

func newQualityChecker(name string, params map[string]any) (Checker, error) {
	var args qualityArgs
	if err := mapstructure.Decode(params, &args); err != nil {
		return nil, fmt.Errorf("decoding %s params: %w", TypeCodeQuality, err)
	}
	if len(args.Paths) == 0 {
		args.Paths = []string{"."}
	}
	return &QualityChecker{name: name, args: args}, nil
}

func (q *QualityChecker) Name() string           { return q.name }
func (q *QualityChecker) CheckType() string      { return TypeCodeQuality }
func (q *QualityChecker) Dependencies() []string { return nil }
func (q *QualityChecker) Cleanup() error         { return nil }

func (q *QualityChecker) IsAvailable() bool {
	return toolOnPath("gofmt") && toolOnPath("go")
}

func (q *QualityChecker) RunCheck(ctx context.Context, runArgs RunArgs) (*models.CheckResult, error) {
	result := models.NewCheckResult(q.name, models.StatusSuccess)

	fmtArgs := append([]string{"-l"}, q.args.Paths...)
	out, err := runCommand(ctx, runArgs.WorkingDirectory, "gofmt", fmtArgs...)
	if err != nil {
		return nil, fmt.Errorf("running gofmt: %w", err)
	}
	if out.Stdout != "" {
		for _, file := range strings.Split(out.Stdout, "\n") {
			result.Warnings = append(result.Warnings, fmt.Sprintf("file not gofmt-formatted: %s", file))
		}
		result.Suggestions = append(result.Suggestions, "run gofmt -w on the listed files")
		result.Status = result.Status.Combine(models.StatusWarning)
	}

	if q.args.Vet == nil || *q.args.Vet {
		vetOut, err := runCommand(ctx, runArgs.WorkingDirectory, "go", "vet", "./...")
		if err != nil {
			return nil, fmt.Errorf("running go vet: %w", err)
		}
		if vetOut.ExitCode != 0 {
			result.Status = models.StatusFailure
			result.Errors = append(result.Errors, splitLines(vetOut.Stderr)...)
			result.Suggestions = append(result.Suggestions, "fix the issues reported by go vet")
		}
		if runArgs.Verbose {
			result.Output = vetOut.Stderr
		}
	}

	result.MergeMetadata(map[string]any{"paths": q.args.Paths})
	return result, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
