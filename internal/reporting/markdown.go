// Package reporting renders run outcomes as markdown, JSON and JUnit
// XML.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// formatDuration formats a duration in a consistent, human-readable
// way, stable across Go versions.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}

func statusIcon(s models.Status) string {
	switch s {
	case models.StatusSuccess:
		return "✅"
	case models.StatusWarning:
		return "⚠️"
	case models.StatusSkipped:
		return "⏭️"
	default:
		return "❌"
	}
}

// FormatMarkdown renders the outcome as a markdown report suitable for
// PR comments and terminal pagers.
func FormatMarkdown(outcome *models.RunOutcome) string {
	var b strings.Builder

	digest := outcome.Digest

	b.WriteString("## Check Results\n\n")

	status := "✅ Passed"
	if digest.Failed > 0 {
		status = "❌ Failed"
	} else if digest.Warnings > 0 {
		status = "⚠️ Passed with warnings"
	}
	b.WriteString(fmt.Sprintf("**Status:** %s | **Duration:** %s\n\n",
		status, formatDuration(outcome.TotalDuration)))

	b.WriteString(fmt.Sprintf("- **Checks:** %d total, %d passed, %d failed, %d warnings, %d skipped\n\n",
		digest.TotalChecks, digest.Succeeded, digest.Failed, digest.Warnings, digest.Skipped))

	b.WriteString("### Checks\n\n")
	b.WriteString("| Check | Status | Duration |\n")
	b.WriteString("|-------|--------|----------|\n")
	for _, name := range outcome.SortedNames() {
		r := outcome.Results[name]
		b.WriteString(fmt.Sprintf("| %s | %s %s | %s |\n",
			name, statusIcon(r.Status), r.Status, formatDuration(r.Duration)))
	}
	b.WriteString("\n")

	failed := outcome.FailedChecks()
	if len(failed) > 0 {
		b.WriteString("### Failures\n\n")
		for _, r := range failed {
			b.WriteString(fmt.Sprintf("#### %s\n\n", r.Name))
			for _, e := range r.Errors {
				b.WriteString(fmt.Sprintf("- %s\n", e))
			}
			if len(r.Suggestions) > 0 {
				b.WriteString("\nSuggestions:\n")
				for _, s := range r.Suggestions {
					b.WriteString(fmt.Sprintf("- %s\n", s))
				}
			}
			b.WriteString("\n")
		}
	}

	var warnings []string
	for _, name := range outcome.SortedNames() {
		r := outcome.Results[name]
		for _, w := range r.Warnings {
			warnings = append(warnings, fmt.Sprintf("- **%s**: %s", name, w))
		}
	}
	if len(warnings) > 0 {
		b.WriteString("### Warnings\n\n")
		b.WriteString(strings.Join(warnings, "\n"))
		b.WriteString("\n")
	}

	return b.String()
}
