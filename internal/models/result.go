package models

import "time"

// Status represents the outcome status of a check.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusFailure    Status = "failure"
	StatusWarning    Status = "warning"
	StatusSkipped    Status = "skipped"
	StatusInProgress Status = "in_progress"
)

// rank orders statuses for aggregation: failure dominates warning,
// warning dominates success. Skipped never degrades an aggregate.
func (s Status) rank() int {
	switch s {
	case StatusFailure:
		return 3
	case StatusWarning:
		return 2
	case StatusSuccess:
		return 1
	default:
		return 0
	}
}

// Combine returns the stricter of two statuses.
func (s Status) Combine(other Status) Status {
	if other.rank() > s.rank() {
		return other
	}
	return s
}

// Severity classifies how serious an issue is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// CheckResult is the outcome of a single check task. Exactly one is
// produced per executed (or skipped) task. After construction the only
// permitted mutation is the executor's metadata merge.
type CheckResult struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Duration    time.Duration  `json:"duration"`
	Output      string         `json:"output,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// NewCheckResult constructs a result stamped with the current time.
func NewCheckResult(name string, status Status) *CheckResult {
	return &CheckResult{
		Name:      name,
		Status:    status,
		Metadata:  map[string]any{},
		Timestamp: time.Now(),
	}
}

// IsSuccessful reports whether the result counts as passing. Warnings
// pass; failures do not.
func (r *CheckResult) IsSuccessful() bool {
	return r.Status == StatusSuccess || r.Status == StatusWarning
}

// HasErrors reports whether the result carries any error detail.
func (r *CheckResult) HasErrors() bool {
	return len(r.Errors) > 0 || r.Status == StatusFailure
}

// MergeMetadata copies the given keys into the result's metadata map,
// leaving the status untouched. This is the executor's single permitted
// post-construction mutation.
func (r *CheckResult) MergeMetadata(extra map[string]any) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any, len(extra))
	}
	for k, v := range extra {
		r.Metadata[k] = v
	}
}
