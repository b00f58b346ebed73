package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

func TestRegistry_CreateBuiltins(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{TypeCodeQuality, TypePerformance, TypeSecurity, TypeTests}, r.Types())

	for _, checkType := range r.Types() {
		c, err := r.Create(checkType, "my-"+checkType, nil)
		require.NoError(t, err, checkType)
		assert.Equal(t, "my-"+checkType, c.Name())
		assert.Equal(t, checkType, c.CheckType())
	}
}

func TestRegistry_UnknownType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Create("mystery", "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}

func TestRegistry_ParamsDecode(t *testing.T) {
	r := NewRegistry()

	c, err := r.Create(TypeTests, "unit", map[string]any{
		"packages": []string{"./internal/..."},
		"race":     true,
		"run":      "TestFoo",
	})
	require.NoError(t, err)

	tc, ok := c.(*TestChecker)
	require.True(t, ok)
	assert.Equal(t, []string{"./internal/..."}, tc.args.Packages)
	assert.True(t, tc.args.Race)
	assert.Equal(t, "TestFoo", tc.args.Run)
}

func TestRegistry_ParamsDecodeError(t *testing.T) {
	r := NewRegistry()
	_, err := r.Create(TypeTests, "unit", map[string]any{"race": "definitely"})
	require.Error(t, err)
}

func TestRegistry_CustomChecker(t *testing.T) {
	r := NewRegistry()
	r.Register("noop", func(name string, params map[string]any) (Checker, error) {
		return &fakeChecker{name: name}, nil
	})

	c, err := r.Create("noop", "nothing", nil)
	require.NoError(t, err)

	res, err := c.RunCheck(context.Background(), RunArgs{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, res.Status)
}

type fakeChecker struct {
	name string
}

func (f *fakeChecker) Name() string           { return f.name }
func (f *fakeChecker) CheckType() string      { return "noop" }
func (f *fakeChecker) Dependencies() []string { return nil }
func (f *fakeChecker) IsAvailable() bool      { return true }
func (f *fakeChecker) Cleanup() error         { return nil }

func (f *fakeChecker) RunCheck(context.Context, RunArgs) (*models.CheckResult, error) {
	return models.NewCheckResult(f.name, models.StatusSuccess), nil
}

func TestFailedTestLines(t *testing.T) {
	stdout := `=== RUN   TestA
--- FAIL: TestA (0.00s)
    a_test.go:10: boom
ok  	example.com/pkg/ok	0.01s
FAIL	example.com/pkg/bad	0.02s`

	lines := failedTestLines(stdout)
	assert.Equal(t, []string{
		"--- FAIL: TestA (0.00s)",
		"FAIL\texample.com/pkg/bad\t0.02s",
	}, lines)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{"a", "b"}, splitLines("a\nb"))
}
