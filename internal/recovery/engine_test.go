package recovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauntlet-dev/gauntlet/internal/resource"
)

func TestHandleError_ClassifiesAndRecords(t *testing.T) {
	e := NewEngine(WithAutoRecovery(false))

	ec := e.HandleError(context.Background(), &DependencyError{Missing: []string{"govulncheck"}},
		"orchestrator", "run security")

	assert.Equal(t, CategoryDependency, ec.Category)
	assert.False(t, ec.Resolved)
	assert.Empty(t, ec.Attempts)

	stats := e.Stats()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByCategory[CategoryDependency])
}

func TestHandleError_FirstSuccessStops(t *testing.T) {
	e := NewEngine(WithRetryDelay(time.Millisecond))

	var ranSecond bool
	e.strategies[CategoryUnknown] = []Action{
		{Strategy: StrategyAutoFix, Description: "first", Func: func(context.Context, *ErrorContext) error {
			return nil
		}},
		{Strategy: StrategyAutoFix, Description: "second", Func: func(context.Context, *ErrorContext) error {
			ranSecond = true
			return nil
		}},
	}

	ec := e.HandleError(context.Background(), errors.New("odd"), "c", "op")
	assert.True(t, ec.Resolved)
	require.Len(t, ec.Attempts, 1)
	assert.Equal(t, "first", ec.Attempts[0].Description)
	assert.Equal(t, StrategyAutoFix, ec.Attempts[0].Strategy)
	assert.True(t, ec.Attempts[0].Succeeded)
	assert.False(t, ranSecond)
}

func TestHandleError_AttemptsCapped(t *testing.T) {
	e := NewEngine(WithMaxRetryAttempts(2), WithRetryDelay(time.Millisecond))

	calls := 0
	failing := Action{Strategy: StrategyAutoFix, Description: "fail", Func: func(context.Context, *ErrorContext) error {
		calls++
		return errors.New("still broken")
	}}
	e.strategies[CategoryUnknown] = []Action{failing, failing, failing, failing}

	ec := e.HandleError(context.Background(), errors.New("odd"), "c", "op")
	assert.False(t, ec.Resolved)
	assert.Len(t, ec.Attempts, 2)
	assert.Equal(t, 2, calls)
}

func TestHandleError_ConfirmationRequiredIsNotRun(t *testing.T) {
	e := NewEngine()

	ec := e.HandleError(context.Background(), &DependencyError{Missing: []string{"gofmt"}},
		"orchestrator", "availability")

	// The dependency list only holds a manual action; it is recorded
	// with its advertised odds but cannot resolve anything.
	require.NotEmpty(t, ec.Attempts)
	assert.Equal(t, StrategyManual, ec.Attempts[0].Strategy)
	assert.InDelta(t, 0.8, ec.Attempts[0].SuccessProbability, 1e-9)
	assert.Equal(t, 20*time.Second, ec.Attempts[0].EstimatedTime)
	assert.False(t, ec.Attempts[0].Succeeded)
	assert.False(t, ec.Resolved)
}

func TestHandleError_ResourceCleanupResolves(t *testing.T) {
	tracker := resource.NewTempTracker(time.Hour, time.Hour)
	tmp := filepath.Join(t.TempDir(), "scratch.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("scratch"), 0o644))
	tracker.Register(tmp, "file")

	e := NewEngine(WithTempTracker(tracker), WithRetryDelay(time.Millisecond))
	ec := e.HandleError(context.Background(),
		errors.New("write: no space left on device"), "checker", "write report")

	assert.Equal(t, CategoryResource, ec.Category)
	assert.True(t, ec.Resolved)
	assert.NoFileExists(t, tmp)
}

func TestHandleError_RetryStrategyPaces(t *testing.T) {
	e := NewEngine(WithRetryDelay(time.Millisecond))

	ec := e.HandleError(context.Background(), context.DeadlineExceeded, "executor", "run tests")
	assert.Equal(t, CategoryTimeout, ec.Category)
	assert.True(t, ec.Resolved)
}

func TestStats_ResolutionRate(t *testing.T) {
	assert.Equal(t, 1.0, Stats{}.ResolutionRate())
	assert.Equal(t, 0.5, Stats{Total: 4, Resolved: 2}.ResolutionRate())
}
