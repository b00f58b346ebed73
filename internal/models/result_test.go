package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCombine_FailureDominates(t *testing.T) {
	assert.Equal(t, StatusFailure, StatusSuccess.Combine(StatusFailure))
	assert.Equal(t, StatusFailure, StatusFailure.Combine(StatusWarning))
	assert.Equal(t, StatusFailure, StatusFailure.Combine(StatusSuccess))
}

func TestStatusCombine_WarningDominatesSuccess(t *testing.T) {
	assert.Equal(t, StatusWarning, StatusSuccess.Combine(StatusWarning))
	assert.Equal(t, StatusWarning, StatusWarning.Combine(StatusSuccess))
}

func TestStatusCombine_SkippedNeverDegrades(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusSuccess.Combine(StatusSkipped))
	assert.Equal(t, StatusWarning, StatusWarning.Combine(StatusSkipped))
}

func TestCheckTaskValidate(t *testing.T) {
	valid := CheckTask{Name: "lint", CheckType: "code_quality"}
	require.NoError(t, valid.Validate())

	noName := CheckTask{CheckType: "code_quality"}
	require.Error(t, noName.Validate())

	noType := CheckTask{Name: "lint"}
	err := noType.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lint")
}

func TestMergeMetadata_PreservesStatus(t *testing.T) {
	r := NewCheckResult("lint", StatusWarning)
	r.MergeMetadata(map[string]any{"task_name": "lint", "execution_time": 1.5})

	assert.Equal(t, StatusWarning, r.Status)
	assert.Equal(t, "lint", r.Metadata["task_name"])
	assert.Equal(t, 1.5, r.Metadata["execution_time"])
}

func TestMergeMetadata_NilMap(t *testing.T) {
	r := &CheckResult{Name: "lint", Status: StatusSuccess}
	r.MergeMetadata(map[string]any{"k": "v"})
	assert.Equal(t, "v", r.Metadata["k"])
}

func TestBuildOutcome(t *testing.T) {
	results := map[string]*CheckResult{
		"a": {Name: "a", Status: StatusSuccess},
		"b": {Name: "b", Status: StatusWarning},
		"c": {Name: "c", Status: StatusFailure},
		"d": {Name: "d", Status: StatusSkipped},
	}

	outcome := BuildOutcome(results, time.Now().Add(-time.Second))

	assert.Equal(t, StatusFailure, outcome.OverallStatus)
	assert.Equal(t, 4, outcome.Digest.TotalChecks)
	assert.Equal(t, 1, outcome.Digest.Succeeded)
	assert.Equal(t, 1, outcome.Digest.Warnings)
	assert.Equal(t, 1, outcome.Digest.Failed)
	assert.Equal(t, 1, outcome.Digest.Skipped)
	assert.False(t, outcome.IsSuccessful())
	assert.GreaterOrEqual(t, outcome.TotalDuration, time.Second)

	failed := outcome.FailedChecks()
	require.Len(t, failed, 1)
	assert.Equal(t, "c", failed[0].Name)
}

func TestBuildOutcome_WarningsPass(t *testing.T) {
	results := map[string]*CheckResult{
		"a": {Name: "a", Status: StatusSuccess},
		"b": {Name: "b", Status: StatusWarning},
	}

	outcome := BuildOutcome(results, time.Now())
	assert.Equal(t, StatusWarning, outcome.OverallStatus)
	assert.True(t, outcome.IsSuccessful())
}

func TestSortedNames(t *testing.T) {
	outcome := BuildOutcome(map[string]*CheckResult{
		"vet":  {Name: "vet", Status: StatusSuccess},
		"fmt":  {Name: "fmt", Status: StatusSuccess},
		"test": {Name: "test", Status: StatusSuccess},
	}, time.Now())

	assert.Equal(t, []string{"fmt", "test", "vet"}, outcome.SortedNames())
}
