package reporting

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

func sampleOutcome() *models.RunOutcome {
	return &models.RunOutcome{
		OverallStatus: models.StatusFailure,
		TotalDuration: 3200 * time.Millisecond,
		Results: map[string]*models.CheckResult{
			"lint": {Name: "lint", Status: models.StatusSuccess, Duration: 800 * time.Millisecond},
			"unit": {
				Name: "unit", Status: models.StatusFailure, Duration: 2 * time.Second,
				Errors:      []string{"--- FAIL: TestParse (0.01s)"},
				Suggestions: []string{"run go test locally on the failing packages"},
			},
			"vuln": {
				Name: "vuln", Status: models.StatusSkipped,
				Warnings: []string{"checker \"security\" is not available in this environment"},
			},
		},
		Digest: models.OutcomeDigest{
			TotalChecks: 3, Succeeded: 1, Failed: 1, Skipped: 1,
		},
		Timestamp: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestFormatMarkdown(t *testing.T) {
	md := FormatMarkdown(sampleOutcome())

	assert.Contains(t, md, "## Check Results")
	assert.Contains(t, md, "❌ Failed")
	assert.Contains(t, md, "| lint | ✅ success |")
	assert.Contains(t, md, "| unit | ❌ failure |")
	assert.Contains(t, md, "### Failures")
	assert.Contains(t, md, "--- FAIL: TestParse")
	assert.Contains(t, md, "run go test locally")
	assert.Contains(t, md, "### Warnings")
}

func TestFormatMarkdown_CleanRun(t *testing.T) {
	outcome := &models.RunOutcome{
		OverallStatus: models.StatusSuccess,
		Results: map[string]*models.CheckResult{
			"lint": {Name: "lint", Status: models.StatusSuccess},
		},
		Digest: models.OutcomeDigest{TotalChecks: 1, Succeeded: 1},
	}

	md := FormatMarkdown(outcome)
	assert.Contains(t, md, "✅ Passed")
	assert.NotContains(t, md, "### Failures")
	assert.NotContains(t, md, "### Warnings")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleOutcome()))

	var decoded models.RunOutcome
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, models.StatusFailure, decoded.OverallStatus)
	assert.Len(t, decoded.Results, 3)
}

func TestConvertToJUnit(t *testing.T) {
	suites := ConvertToJUnit(sampleOutcome())

	assert.Equal(t, 3, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 1, suites.Skipped)
	require.Len(t, suites.TestSuites, 1)

	suite := suites.TestSuites[0]
	require.Len(t, suite.TestCases, 3)

	byName := map[string]JUnitTestCase{}
	for _, tc := range suite.TestCases {
		byName[tc.Name] = tc
	}

	assert.Nil(t, byName["lint"].Failure)
	require.NotNil(t, byName["unit"].Failure)
	assert.Contains(t, byName["unit"].Failure.Message, "FAIL")
	require.NotNil(t, byName["vuln"].Skipped)
}

func TestWriteJUnit_WellFormed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJUnit(&buf, sampleOutcome()))

	assert.Contains(t, buf.String(), "<?xml")
	assert.Contains(t, buf.String(), "<testsuites")

	var decoded JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.Tests)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "2s", formatDuration(2*time.Second))
}
