// Package models defines the core data types shared across the
// orchestration pipeline: check tasks, check results, and the aggregate
// outcome of a run.
package models

import (
	"fmt"
	"time"
)

// CheckTask describes one unit of check work to be scheduled by the
// orchestrator. Tasks are treated as immutable once submitted.
type CheckTask struct {
	// Name uniquely identifies the task within a batch.
	Name string `yaml:"name" json:"name"`
	// CheckType selects the checker that will execute this task.
	CheckType string `yaml:"type" json:"check_type"`
	// Dependencies lists task names that must reach a terminal state
	// before this task may start.
	Dependencies []string `yaml:"depends_on,omitempty" json:"dependencies,omitempty"`
	// Timeout bounds the reported duration of a single execution.
	// Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	// Priority orders submission within a dependency level. Higher
	// numbers are submitted first.
	Priority int `yaml:"priority,omitempty" json:"priority,omitempty"`
	// Params configures the checker instance for this task.
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
	// Metadata is free-form annotation carried into results.
	Metadata map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Validate reports configuration-shape problems with the task.
func (t *CheckTask) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("task name cannot be empty")
	}
	if t.CheckType == "" {
		return fmt.Errorf("task %q: check type cannot be empty", t.Name)
	}
	return nil
}
