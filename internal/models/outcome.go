package models

import (
	"sort"
	"time"
)

// RunOutcome aggregates every check result from one orchestrated run.
type RunOutcome struct {
	OverallStatus Status                  `json:"overall_status"`
	TotalDuration time.Duration           `json:"total_duration"`
	Results       map[string]*CheckResult `json:"results"`
	Digest        OutcomeDigest           `json:"summary"`
	Timestamp     time.Time               `json:"timestamp"`
}

// OutcomeDigest is a compact summary suitable for reports and exit-code
// decisions.
type OutcomeDigest struct {
	TotalChecks int `json:"total_checks"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	Warnings    int `json:"warnings"`
	Skipped     int `json:"skipped"`
}

// BuildOutcome folds per-task results into a RunOutcome. The overall
// status follows strict aggregation: any failure makes the run a
// failure, otherwise any warning makes it a warning.
func BuildOutcome(results map[string]*CheckResult, started time.Time) *RunOutcome {
	outcome := &RunOutcome{
		OverallStatus: StatusSuccess,
		TotalDuration: time.Since(started),
		Results:       results,
		Timestamp:     time.Now(),
	}

	for _, r := range results {
		outcome.Digest.TotalChecks++
		switch r.Status {
		case StatusSuccess:
			outcome.Digest.Succeeded++
		case StatusFailure:
			outcome.Digest.Failed++
		case StatusWarning:
			outcome.Digest.Warnings++
		case StatusSkipped:
			outcome.Digest.Skipped++
		}
		if r.Status != StatusSkipped {
			outcome.OverallStatus = outcome.OverallStatus.Combine(r.Status)
		}
	}

	return outcome
}

// IsSuccessful reports whether the run as a whole passed.
func (o *RunOutcome) IsSuccessful() bool {
	return o.OverallStatus == StatusSuccess || o.OverallStatus == StatusWarning
}

// FailedChecks returns the failing results sorted by name for stable
// report output.
func (o *RunOutcome) FailedChecks() []*CheckResult {
	var failed []*CheckResult
	for _, r := range o.Results {
		if r.Status == StatusFailure {
			failed = append(failed, r)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Name < failed[j].Name })
	return failed
}

// SortedNames returns all result names in lexical order.
func (o *RunOutcome) SortedNames() []string {
	names := make([]string, 0, len(o.Results))
	for name := range o.Results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
