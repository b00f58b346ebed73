package depgraph

import (
	"errors"
	"testing"

	"github.com/gauntlet-dev/gauntlet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(name string, deps ...string) models.CheckTask {
	return models.CheckTask{Name: name, CheckType: name, Dependencies: deps}
}

func indexOf(t *testing.T, order []string, name string) int {
	t.Helper()
	for i, n := range order {
		if n == name {
			return i
		}
	}
	t.Fatalf("task %q not in order %v", name, order)
	return -1
}

func TestResolveOrder_DependenciesComeFirst(t *testing.T) {
	tasks := []models.CheckTask{
		task("report", "test", "lint"),
		task("test", "build"),
		task("lint"),
		task("build"),
	}

	order, err := ResolveOrder(tasks)
	require.NoError(t, err)
	require.Len(t, order, 4)

	assert.Less(t, indexOf(t, order, "build"), indexOf(t, order, "test"))
	assert.Less(t, indexOf(t, order, "test"), indexOf(t, order, "report"))
	assert.Less(t, indexOf(t, order, "lint"), indexOf(t, order, "report"))
}

func TestResolveOrder_UnknownDependencyDropped(t *testing.T) {
	tasks := []models.CheckTask{
		task("lint", "does-not-exist"),
		task("test"),
	}

	order, err := ResolveOrder(tasks)
	require.NoError(t, err)
	assert.Len(t, order, 2)
}

func TestResolveOrder_CycleFails(t *testing.T) {
	tasks := []models.CheckTask{
		task("a", "b"),
		task("b", "a"),
	}

	_, err := ResolveOrder(tasks)
	require.Error(t, err)

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
}

func TestResolveOrder_IndirectCycle(t *testing.T) {
	tasks := []models.CheckTask{
		task("a", "c"),
		task("b", "a"),
		task("c", "b"),
	}

	_, err := ResolveOrder(tasks)
	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.NotEmpty(t, cycleErr.Remaining)
}

func TestLevels_Scenario(t *testing.T) {
	// A(deps:[]), B(deps:[A]), C(deps:[]) => {0:[A,C], 1:[B]}
	tasks := []models.CheckTask{
		task("A"),
		task("B", "A"),
		task("C"),
	}

	levels, err := Levels(tasks)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.ElementsMatch(t, []string{"A", "C"}, levels[0])
	assert.Equal(t, []string{"B"}, levels[1])
}

func TestLevels_DeepChain(t *testing.T) {
	tasks := []models.CheckTask{
		task("d", "c"),
		task("c", "b"),
		task("b", "a"),
		task("a"),
	}

	levels, err := Levels(tasks)
	require.NoError(t, err)
	for i, name := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, []string{name}, levels[i])
	}
}

func TestLevels_TaskAboveAllDependencies(t *testing.T) {
	tasks := []models.CheckTask{
		task("a"),
		task("b"),
		task("c", "a"),
		task("d", "b", "c"),
	}

	levels, err := Levels(tasks)
	require.NoError(t, err)

	levelOf := map[string]int{}
	for lvl, names := range levels {
		for _, n := range names {
			levelOf[n] = lvl
		}
	}

	for _, tk := range tasks {
		for _, dep := range tk.Dependencies {
			assert.Greater(t, levelOf[tk.Name], levelOf[dep],
				"%s must sit above its dependency %s", tk.Name, dep)
		}
	}
}

func TestLevels_CyclePropagates(t *testing.T) {
	tasks := []models.CheckTask{task("a", "b"), task("b", "a")}
	_, err := Levels(tasks)
	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
}
