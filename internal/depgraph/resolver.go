// Package depgraph resolves the dependency graph of a check task batch
// into a topological order and into dependency levels usable as
// concurrency barriers.
package depgraph

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// CycleError reports a circular dependency. Remaining holds the names
// of tasks that could not be ordered; at least one of them participates
// in a cycle.
type CycleError struct {
	Remaining []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency detected among tasks: %s", strings.Join(e.Remaining, ", "))
}

// ResolveOrder returns the task names in an order where every task
// appears after all of its declared dependencies that exist in the
// batch (Kahn's algorithm). A dependency naming an unknown task is
// dropped with a warning rather than treated as an error. A cycle
// yields a *CycleError.
func ResolveOrder(tasks []models.CheckTask) ([]string, error) {
	taskSet := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		taskSet[t.Name] = struct{}{}
	}

	// dependency -> dependents
	dependents := make(map[string][]string, len(tasks))
	inDegree := make(map[string]int, len(tasks))
	for _, t := range tasks {
		inDegree[t.Name] = 0
	}

	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := taskSet[dep]; !ok {
				slog.Warn("task depends on unknown task, dropping edge",
					"task", t.Name, "dependency", dep)
				continue
			}
			dependents[dep] = append(dependents[dep], t.Name)
			inDegree[t.Name]++
		}
	}

	// Seed with zero in-degree nodes in input order for determinism.
	var queue []string
	for _, t := range tasks {
		if inDegree[t.Name] == 0 {
			queue = append(queue, t.Name)
		}
	}

	order := make([]string, 0, len(tasks))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, next := range dependents[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(tasks) {
		var remaining []string
		for name, deg := range inDegree {
			if deg > 0 {
				remaining = append(remaining, name)
			}
		}
		sort.Strings(remaining)
		return nil, &CycleError{Remaining: remaining}
	}

	return order, nil
}

// Levels groups tasks by dependency depth. A task's level is one more
// than the deepest of its dependencies that exist in the batch; tasks
// with no dependencies sit at level 0. Levels form safe execution
// barriers: everything at level N may run once levels < N are done.
func Levels(tasks []models.CheckTask) (map[int][]string, error) {
	order, err := ResolveOrder(tasks)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]models.CheckTask, len(tasks))
	for _, t := range tasks {
		byName[t.Name] = t
	}

	levels := make(map[int][]string)
	taskLevel := make(map[string]int, len(tasks))

	for _, name := range order {
		maxDep := -1
		for _, dep := range byName[name].Dependencies {
			if lvl, ok := taskLevel[dep]; ok && lvl > maxDep {
				maxDep = lvl
			}
		}
		level := maxDep + 1
		taskLevel[name] = level
		levels[level] = append(levels[level], name)
	}

	return levels, nil
}
