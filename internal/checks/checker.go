// Package checks defines the checker contract and the built-in checkers
// that wrap standard Go toolchain commands.
package checks

import (
	"context"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// RunArgs carries per-invocation settings into a checker.
type RunArgs struct {
	// WorkingDirectory is the project root the check runs against.
	WorkingDirectory string

	// Verbose asks the checker to keep full tool output in the result.
	Verbose bool
}

// Checker is a single kind of check. Implementations must be safe to
// call from one goroutine at a time; the orchestrator never runs the
// same checker concurrently with itself.
type Checker interface {
	// Name is the instance name, usually the task name from config.
	Name() string

	// CheckType is the registry key this checker was created under.
	CheckType() string

	// Dependencies are check types this checker needs finished first
	// when the task declares none of its own.
	Dependencies() []string

	// IsAvailable reports whether the underlying tool can run here.
	IsAvailable() bool

	// RunCheck executes the check. A non-nil error means the checker
	// itself broke; a found problem is reported through the result
	// status instead.
	RunCheck(ctx context.Context, args RunArgs) (*models.CheckResult, error)

	// Cleanup releases anything the checker created. Called exactly
	// once after RunCheck, even on error or timeout.
	Cleanup() error
}
