// Package recovery classifies check errors and drives automatic
// recovery attempts with bounded, safe actions.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// Category buckets an error by its root cause.
type Category string

const (
	CategoryEnvironment   Category = "environment"
	CategoryConfiguration Category = "configuration"
	CategoryExecution     Category = "execution"
	CategoryDependency    Category = "dependency"
	CategoryResource      Category = "resource"
	CategoryNetwork       Category = "network"
	CategoryPermission    Category = "permission"
	CategoryTimeout       Category = "timeout"
	CategoryUnknown       Category = "unknown"
)

// EnvironmentError reports a broken or incomplete host environment.
type EnvironmentError struct {
	Msg string
}

func (e *EnvironmentError) Error() string { return e.Msg }

// ConfigurationError reports invalid or unusable configuration.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// DependencyError reports missing tools or modules a check needs.
type DependencyError struct {
	Missing []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("missing dependencies: %s", strings.Join(e.Missing, ", "))
}

// CheckerError wraps a failure inside a specific checker.
type CheckerError struct {
	Checker string
	Err     error
}

func (e *CheckerError) Error() string {
	return fmt.Sprintf("checker %s: %v", e.Checker, e.Err)
}

func (e *CheckerError) Unwrap() error { return e.Err }

// Classify buckets err into a Category. Typed errors win over message
// inspection; message keywords are the fallback for errors that arrive
// as plain strings from subprocesses.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var envErr *EnvironmentError
	var cfgErr *ConfigurationError
	var depErr *DependencyError
	switch {
	case errors.As(err, &envErr):
		return CategoryEnvironment
	case errors.As(err, &cfgErr):
		return CategoryConfiguration
	case errors.As(err, &depErr):
		return CategoryDependency
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.Is(err, exec.ErrNotFound):
		return CategoryDependency
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no space left"):
		return CategoryResource
	case strings.Contains(msg, "out of memory") || strings.Contains(msg, "cannot allocate memory"):
		return CategoryResource
	case strings.Contains(msg, "permission denied") || strings.Contains(msg, "operation not permitted"):
		return CategoryPermission
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "network is unreachable"):
		return CategoryNetwork
	case strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout"):
		return CategoryTimeout
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return CategoryExecution
	}

	return CategoryUnknown
}

// SeverityFor maps an error and its category to a severity level.
// Interruption is critical; environment and dependency problems block
// whole check families; resource and timeout pressure is usually
// transient.
func SeverityFor(err error, category Category) models.Severity {
	if errors.Is(err, context.Canceled) {
		return models.SeverityCritical
	}

	switch category {
	case CategoryEnvironment, CategoryDependency:
		return models.SeverityHigh
	case CategoryConfiguration, CategoryExecution:
		return models.SeverityMedium
	case CategoryResource, CategoryTimeout:
		return models.SeverityLow
	default:
		return models.SeverityMedium
	}
}
