package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauntlet-dev/gauntlet/internal/config"
	"github.com/gauntlet-dev/gauntlet/internal/models"
)

func writeProjectConfig(t *testing.T, dir string) {
	t.Helper()
	content := `
max_parallel: 2
tasks:
  - name: lint
    type: code_quality
  - name: unit
    type: tests
    depends_on: [lint]
    timeout: 5m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(content), 0o644))
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	writeProjectConfig(t, dir)

	out, err := runCLI(t, "list", "--dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "lint")
	assert.Contains(t, out, "code_quality")
	assert.Contains(t, out, "5m0s")
	assert.Contains(t, out, "Available check types:")
}

func TestListCommand_NoConfig(t *testing.T) {
	out, err := runCLI(t, "list", "--dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No checks configured.")
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	writeProjectConfig(t, dir)

	out, err := runCLI(t, "plan", "--dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "level 0: lint")
	assert.Contains(t, out, "level 1: unit")
}

func TestPlanCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	writeProjectConfig(t, dir)

	out, err := runCLI(t, "plan", "--dir", dir, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"levels"`)
}

func TestInitCommand_Defaults(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "init", "--dir", dir, "--defaults")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Len(t, cfg.Tasks, 2)
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	writeProjectConfig(t, dir)

	_, err := runCLI(t, "init", "--dir", dir, "--defaults")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	outcome := &models.RunOutcome{Results: map[string]*models.CheckResult{}}
	err := writeReport(outcome, "yaml", "")
	require.Error(t, err)
}

func TestWriteReport_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	outcome := &models.RunOutcome{
		OverallStatus: models.StatusSuccess,
		Results: map[string]*models.CheckResult{
			"lint": {Name: "lint", Status: models.StatusSuccess, Duration: time.Second},
		},
		Digest: models.OutcomeDigest{TotalChecks: 1, Succeeded: 1},
	}

	require.NoError(t, writeReport(outcome, "json", path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"overall_status": "success"`)
}
