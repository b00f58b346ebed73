package reporting

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one orchestrated run.
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one check task.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a failed check.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a check as skipped.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// ConvertToJUnit maps a run outcome onto the JUnit XML schema so CI
// systems can ingest check results as test results.
func ConvertToJUnit(outcome *models.RunOutcome) *JUnitTestSuites {
	suite := JUnitTestSuite{
		Name:      "gauntlet",
		Tests:     outcome.Digest.TotalChecks,
		Failures:  outcome.Digest.Failed,
		Skipped:   outcome.Digest.Skipped,
		Time:      outcome.TotalDuration.Seconds(),
		Timestamp: outcome.Timestamp.UTC().Format(time.RFC3339),
	}

	for _, name := range outcome.SortedNames() {
		r := outcome.Results[name]
		tc := JUnitTestCase{
			Name:      name,
			Classname: "gauntlet.checks",
			Time:      r.Duration.Seconds(),
		}
		switch r.Status {
		case models.StatusFailure:
			tc.Failure = &JUnitFailure{
				Message: firstLineOr(r.Errors, "check failed"),
				Type:    "failure",
				Body:    strings.Join(r.Errors, "\n"),
			}
		case models.StatusSkipped:
			tc.Skipped = &JUnitSkipped{Message: firstLineOr(r.Warnings, "skipped")}
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Skipped:    suite.Skipped,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}
}

// WriteJUnit renders the outcome as JUnit XML.
func WriteJUnit(w io.Writer, outcome *models.RunOutcome) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(ConvertToJUnit(outcome)); err != nil {
		return fmt.Errorf("encoding junit xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func firstLineOr(lines []string, fallback string) string {
	if len(lines) > 0 {
		return lines[0]
	}
	return fallback
}
